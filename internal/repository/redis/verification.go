package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/Redabouizer/crealik-auth/internal/core/domain"
	"github.com/Redabouizer/crealik-auth/internal/core/port"
	"github.com/Redabouizer/crealik-auth/internal/repository"
)

const defaultVerificationPrefix = "verify"

type verificationRecord struct {
	Code      string `json:"code"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at"`
}

// VerificationRepository keeps per-address code history in Redis sorted sets,
// scored by issue time. Records are never removed on verification; only the
// storage TTL reclaims them, so expiry stays a purely logical property.
type VerificationRepository struct {
	client *red.Client
	prefix string
}

// NewVerificationRepository constructs a repository with the provided Redis client and key prefix.
func NewVerificationRepository(client *red.Client, keyPrefix string) *VerificationRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultVerificationPrefix
	}

	return &VerificationRepository{client: client, prefix: prefix}
}

// Append stores a newly issued code alongside any earlier ones for the address.
func (r *VerificationRepository) Append(ctx context.Context, code domain.VerificationCode, ttl time.Duration) error {
	email := strings.TrimSpace(code.Email)
	switch {
	case email == "":
		return errors.New("email is required")
	case strings.TrimSpace(code.Code) == "":
		return errors.New("code is required")
	case code.Purpose == "":
		return errors.New("purpose is required")
	case ttl <= 0:
		return errors.New("ttl must be positive")
	}

	payload, err := json.Marshal(verificationRecord{
		Code:      code.Code,
		CreatedAt: code.CreatedAt.Unix(),
		ExpiresAt: code.ExpiresAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal verification record: %w", err)
	}

	key := r.key(code.Purpose, email)

	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, key, red.Z{Score: float64(code.CreatedAt.UnixNano()), Member: string(payload)})
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis append verification code: %w", err)
	}

	return nil
}

// Latest returns the most recently issued code for the purpose and address.
func (r *VerificationRepository) Latest(ctx context.Context, purpose domain.VerificationPurpose, email string) (*domain.VerificationCode, error) {
	email = strings.TrimSpace(email)
	if purpose == "" || email == "" {
		return nil, errors.New("purpose and email are required")
	}

	values, err := r.client.ZRevRange(ctx, r.key(purpose, email), 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrevrange verification codes: %w", err)
	}
	if len(values) == 0 {
		return nil, repository.ErrNotFound
	}

	var record verificationRecord
	if err := json.Unmarshal([]byte(values[0]), &record); err != nil {
		return nil, fmt.Errorf("unmarshal verification record: %w", err)
	}

	return &domain.VerificationCode{
		Email:     email,
		Code:      record.Code,
		Purpose:   purpose,
		CreatedAt: time.Unix(record.CreatedAt, 0).UTC(),
		ExpiresAt: time.Unix(record.ExpiresAt, 0).UTC(),
	}, nil
}

func (r *VerificationRepository) key(purpose domain.VerificationPurpose, email string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, purpose, strings.ToLower(email))
}

var _ port.VerificationStore = (*VerificationRepository)(nil)
