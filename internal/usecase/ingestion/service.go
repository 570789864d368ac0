// Package ingestion turns raw scraped creator payloads into public profiles.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/influencersphere/internal/domain"
	"github.com/kailas-cloud/influencersphere/internal/domain/ingestion"
	"github.com/kailas-cloud/influencersphere/internal/domain/profile"
	"github.com/kailas-cloud/influencersphere/internal/logger"
	"github.com/kailas-cloud/influencersphere/internal/metrics"
)

// Raw payload keys.
const (
	KeyUsername      = "username"
	KeyPlatform      = "platform"
	KeyFollowerCount = "follower_count"
	KeyCaptions      = "recent_post_captions"
	KeyBio           = "bio"
	KeyRecentLikes   = "recent_likes"
)

// passthrough are optional numeric payload fields copied onto the profile as scoring features.
var passthrough = []string{profile.FieldFollowerGrowthRate}

// ProfileWriter merge-writes profiles into the public pool.
type ProfileWriter interface {
	Upsert(ctx context.Context, p profile.Profile) error
}

// AuditLog appends audit records to a tenant's private log.
type AuditLog interface {
	Append(ctx context.Context, tenantID string, e ingestion.LogEntry) (string, error)
}

// NicheProfiler labels a creator's niche.
type NicheProfiler interface {
	Label(ctx context.Context, bio string, captions []string) (string, error)
}

// Service validates, enriches and stores raw payloads.
type Service struct {
	profiles ProfileWriter
	audit    AuditLog
	niche    NicheProfiler
	now      func() time.Time
}

// New creates an ingestion service.
func New(profiles ProfileWriter, audit AuditLog, niche NicheProfiler) *Service {
	return &Service{profiles: profiles, audit: audit, niche: niche, now: time.Now}
}

// Ingest processes one raw payload for the tenant bound to ctx and returns the profile id.
// Invalid payloads are audited as INVALID before the validation error is returned.
func (s *Service) Ingest(ctx context.Context, raw map[string]any) (string, error) {
	tenant := domain.TenantFromContext(ctx)
	if tenant == "" {
		return "", fmt.Errorf("ingest: no tenant bound: %w", domain.ErrUnauthorized)
	}
	log := logger.FromContext(ctx)

	in, err := parse(raw)
	if err != nil {
		metrics.IngestionTotal.WithLabelValues(string(ingestion.StatusInvalid)).Inc()
		if _, aerr := s.audit.Append(ctx, tenant, ingestion.NewLogEntry(s.now(), ingestion.StatusInvalid, raw, "")); aerr != nil {
			log.Warn("Failed to audit invalid payload", zap.Error(aerr))
		}
		return "", fmt.Errorf("ingest: %w", err)
	}

	label, err := s.niche.Label(ctx, in.bio, in.captions)
	if err != nil {
		return "", fmt.Errorf("ingest: niche profile: %w", err)
	}

	p, err := profile.New(profile.Params{
		Username:       in.username,
		Platform:       in.platform,
		FollowerCount:  in.followers,
		EngagementRate: engagementRate(in.likes, in.followers),
		NicheLabel:     label,
		LastUpdated:    float64(s.now().UnixNano()) / 1e9,
		BioSummary:     firstLine(in.bio),
		Extra:          in.extra,
	})
	if err != nil {
		return "", fmt.Errorf("ingest: %w: %w", domain.ErrValidation, err)
	}

	if err := s.profiles.Upsert(ctx, p); err != nil {
		metrics.IngestionTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("ingest: %w", err)
	}
	if _, err := s.audit.Append(ctx, tenant, ingestion.NewLogEntry(s.now(), ingestion.StatusSuccess, raw, p.ID())); err != nil {
		return "", fmt.Errorf("ingest: audit: %w", err)
	}

	metrics.IngestionTotal.WithLabelValues(string(ingestion.StatusSuccess)).Inc()
	log.Info("Profile ingested",
		zap.String("profile_id", p.ID()),
		zap.String("niche", label),
	)
	return p.ID(), nil
}

type input struct {
	username  string
	platform  string
	followers int64
	likes     float64
	bio       string
	captions  []string
	extra     map[string]any
}

func parse(raw map[string]any) (input, error) {
	var errs []error
	in := input{extra: make(map[string]any)}

	for _, key := range []string{KeyUsername, KeyPlatform, KeyFollowerCount, KeyCaptions} {
		if _, ok := raw[key]; !ok {
			errs = append(errs, domain.NewFieldError(key, "is required"))
		}
	}
	if len(errs) > 0 {
		return input{}, errors.Join(errs...)
	}

	in.username, _ = raw[KeyUsername].(string)
	if strings.TrimSpace(in.username) == "" {
		errs = append(errs, domain.NewFieldError(KeyUsername, "must be a non-empty string"))
	}
	in.platform, _ = raw[KeyPlatform].(string)
	if strings.TrimSpace(in.platform) == "" {
		errs = append(errs, domain.NewFieldError(KeyPlatform, "must be a non-empty string"))
	}

	followers, ok := profile.Number(raw[KeyFollowerCount])
	if !ok || followers < 1 || followers != math.Trunc(followers) {
		errs = append(errs, domain.NewFieldError(KeyFollowerCount, "must be a positive integer"))
	}
	in.followers = int64(followers)

	captions, ok := stringList(raw[KeyCaptions])
	if !ok {
		errs = append(errs, domain.NewFieldError(KeyCaptions, "must be a list of strings"))
	}
	in.captions = captions

	if v, present := raw[KeyRecentLikes]; present {
		likes, ok := profile.Number(v)
		if !ok || likes < 0 {
			errs = append(errs, domain.NewFieldError(KeyRecentLikes, "must be a non-negative number"))
		}
		in.likes = likes
	}
	if v, present := raw[KeyBio]; present {
		bio, ok := v.(string)
		if !ok {
			errs = append(errs, domain.NewFieldError(KeyBio, "must be a string"))
		}
		in.bio = bio
	}

	for _, key := range passthrough {
		if n, ok := profile.Number(raw[key]); ok {
			in.extra[key] = n
		}
	}

	if len(errs) > 0 {
		return input{}, errors.Join(errs...)
	}
	return in, nil
}

func stringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// engagementRate is likes per follower as a percentage, rounded to two decimals.
func engagementRate(likes float64, followers int64) float64 {
	if followers <= 0 {
		return 0
	}
	return math.Round(likes/float64(followers)*100*100) / 100
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
