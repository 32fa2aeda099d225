package services

import (
	"context"
	"fmt"
	"strings"

	"algocamp_backend/internal/crypto"
	"algocamp_backend/internal/logger"
	"algocamp_backend/internal/repositories"
	"algocamp_backend/pkg/apperrors"
)

// NormalizeDigits strips everything but digits; national ids and phone
// numbers are compared in this form.
func NormalizeDigits(v string) string {
	var b strings.Builder
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeEmail lowercases and trims; emails are compared in this form.
func NormalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// Conflict names one sensitive field clashing with one existing row.
type Conflict struct {
	Field         string
	ApplicationID string
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s matches existing application %s", c.Field, c.ApplicationID)
}

// UniquenessVerifier confirms, after a row is inserted, that no other row
// shares a normalized sensitive value. Ciphertext is non-deterministic, so
// the store cannot index these fields directly: rows carrying a blind-index
// digest are compared by digest, legacy rows are decrypted and compared in
// normalized form. Every existing row is visited, which makes the check
// O(N) decrypt operations in the worst case — an accepted ceiling.
//
// On conflict (or on a scan failure) the newly inserted row is removed: the
// insert-then-verify sequence is not transactional, so the verifier owns
// the compensating delete.
type UniquenessVerifier struct {
	repo  repositories.ApplicationRepository
	codec *crypto.FieldCodec
}

func NewUniquenessVerifier(repo repositories.ApplicationRepository, codec *crypto.FieldCodec) *UniquenessVerifier {
	return &UniquenessVerifier{repo: repo, codec: codec}
}

// Verify scans all rows except newID. It returns nil when the new values
// are unique; otherwise the new row has already been deleted and the error
// describes every conflict found.
func (v *UniquenessVerifier) Verify(ctx context.Context, newID string, nationalID, telephone, email string) error {
	rows, err := v.repo.ListSensitive(ctx, newID)
	if err != nil {
		v.rollback(ctx, newID)
		return apperrors.StoreError(err)
	}

	incoming := [3]struct {
		field  string
		norm   string
		digest string
	}{
		{"nationalId", nationalID, v.codec.Digest(nationalID)},
		{"telephone", telephone, v.codec.Digest(telephone)},
		{"email", email, v.codec.Digest(email)},
	}

	var conflicts []Conflict
	for _, row := range rows {
		stored := [3]struct {
			cipher string
			digest *string
		}{
			{row.NationalID, row.NationalIDDigest},
			{row.Telephone, row.TelephoneDigest},
			{row.Email, row.EmailDigest},
		}

		for i, in := range incoming {
			if in.norm == "" {
				continue
			}
			if v.matches(stored[i].cipher, stored[i].digest, in.norm, in.digest, in.field == "email") {
				conflicts = append(conflicts, Conflict{Field: in.field, ApplicationID: row.ID})
			}
		}
	}

	if len(conflicts) == 0 {
		return nil
	}

	v.rollback(ctx, newID)

	descriptions := make([]string, len(conflicts))
	for i, c := range conflicts {
		descriptions[i] = c.String()
	}
	return apperrors.DuplicateApplication(descriptions)
}

// matches compares one stored sensitive value against an incoming
// normalized value. Digest equality is authoritative when the stored row
// has a digest; otherwise the ciphertext is decrypted and normalized the
// same way the incoming value was.
func (v *UniquenessVerifier) matches(cipher string, digest *string, norm, normDigest string, isEmail bool) bool {
	if digest != nil && *digest != "" {
		return *digest == normDigest
	}
	plain := v.codec.Decrypt(cipher)
	if isEmail {
		return NormalizeEmail(plain) == norm
	}
	return NormalizeDigits(plain) == norm
}

func (v *UniquenessVerifier) rollback(ctx context.Context, id string) {
	if err := v.repo.Delete(ctx, id); err != nil {
		logger.CtxWithError(ctx, "compensating delete failed", err, "application_id", id)
	}
}
