package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/glider/internal/common"
	"github.com/dmitrijs2005/glider/internal/cryptox"
	"github.com/dmitrijs2005/glider/internal/logging"
	sc "github.com/dmitrijs2005/glider/internal/server/config"
	"github.com/dmitrijs2005/glider/internal/server/session"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

type archiveConfig struct {
	Length                   int  `json:"length"`
	IncludeNumbers           bool `json:"include_numbers"`
	IncludeUppercaseLetters  bool `json:"include_uppercase_letters"`
	IncludeSpecialCharacters bool `json:"include_special_characters"`
}

// archiveEntry is one password inside a sealed archive. Field names follow
// the wire format so clients decode archives with the contract types.
type archiveEntry struct {
	PasswordID string        `json:"password_id"`
	Type       string        `json:"type"`
	Tail       string        `json:"tail"`
	Scopes     *string       `json:"scopes,omitempty"`
	Secret     string        `json:"secret"`
	Config     archiveConfig `json:"password_configurations"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

type archiveDocument struct {
	UserID    string         `json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
	Passwords []archiveEntry `json:"passwords"`
}

// Archive describes an uploaded vault snapshot.
type Archive struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

// ArchiveService exports a user's live passwords, sealed under a passphrase
// the user supplies, to object storage and hands back a short-lived download
// URL.
type ArchiveService struct {
	vault  *VaultService
	config *sc.Config
	logger logging.Logger
}

func NewArchiveService(vault *VaultService, config *sc.Config, logger logging.Logger) *ArchiveService {
	return &ArchiveService{
		vault:  vault,
		config: config,
		logger: logger.With("module", "archive"),
	}
}

// ArchiveKey builds the object key for a new archive of userID.
func ArchiveKey(userID string, at time.Time) string {
	return fmt.Sprintf("archives/%s/%d/%02d/%02d/%v", userID, at.Year(), at.Month(), at.Day(), uuid.New())
}

func (s *ArchiveService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// ArchiveVault uploads a snapshot of the caller's vault sealed under
// passphrase. Only the holder of the passphrase can open it.
func (s *ArchiveService) ArchiveVault(ctx context.Context, who session.Identity, passphrase string) (*Archive, error) {
	if err := requireIdentity(who); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(passphrase) < cryptox.MinPassphraseLength {
		return nil, common.NewFieldError("passphrase", fmt.Sprintf("must be at least %d characters", cryptox.MinPassphraseLength))
	}

	passwords, err := s.vault.exportAll(ctx, who)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := archiveDocument{
		UserID:    who.UserID,
		CreatedAt: now,
		Passwords: make([]archiveEntry, 0, len(passwords)),
	}
	for _, pw := range passwords {
		doc.Passwords = append(doc.Passwords, archiveEntry{
			PasswordID: pw.ID,
			Type:       string(pw.Type),
			Tail:       pw.Tail,
			Scopes:     pw.Scopes,
			Secret:     pw.Secret,
			Config: archiveConfig{
				Length:                   pw.Configuration.Length,
				IncludeNumbers:           pw.Configuration.IncludeNumbers,
				IncludeUppercaseLetters:  pw.Configuration.IncludeUppercaseLetters,
				IncludeSpecialCharacters: pw.Configuration.IncludeSpecialCharacters,
			},
			CreatedAt: pw.CreatedAt,
			UpdatedAt: pw.UpdatedAt,
		})
	}

	plain, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode archive: %w", err)
	}
	body, err := cryptox.SealArchive([]byte(passphrase), plain)
	common.WipeByteArray(plain)
	if err != nil {
		return nil, fmt.Errorf("seal archive: %w", err)
	}

	key := ArchiveKey(who.UserID, now)

	client, err := s.getClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: s3 client: %w", common.ErrStorage, err)
	}

	bucket := s.config.S3Bucket
	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/octet-stream"),
	}); err != nil {
		return nil, fmt.Errorf("%w: upload archive: %w", common.ErrStorage, err)
	}

	ttl := s.config.ArchiveURLValidityDuration
	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, fmt.Errorf("%w: presign archive: %w", common.ErrStorage, err)
	}

	s.logger.Info(ctx, "vault archived", "user_id", who.UserID, "key", key, "passwords", len(doc.Passwords))
	return &Archive{Key: key, URL: req.URL, ExpiresAt: now.Add(ttl)}, nil
}
