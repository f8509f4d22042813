package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/mutation"
	"github.com/roots/admin-console/internal/core/ports"
	"github.com/roots/admin-console/internal/core/query"
)

// PaymentConfigSaved is the notice shown after a QR code change.
const PaymentConfigSaved = "Payment QR code updated successfully"

// PaymentConfigService reads and replaces the payment QR code.
type PaymentConfigService struct {
	activity ports.ActivityRecorder
	log      zerolog.Logger
	now      func() time.Time
}

func NewPaymentConfigService(activity ports.ActivityRecorder, log zerolog.Logger) *PaymentConfigService {
	return &PaymentConfigService{activity: activity, log: log, now: time.Now}
}

var paymentConfigKey = query.NewKey(resourcePaymentConfig)

// Get returns the current config. A missing config is an unset QR code.
func (s *PaymentConfigService) Get(ctx context.Context, ws *ports.Workspace, refresh bool) (domain.PaymentConfig, error) {
	fetch := func(ctx context.Context) (domain.PaymentConfig, error) {
		cfg, err := ws.API.GetPaymentConfig(ctx)
		if err != nil && isNotFound(err) {
			return domain.PaymentConfig{}, nil
		}
		return cfg, err
	}

	var (
		cfg domain.PaymentConfig
		err error
	)
	if refresh {
		cfg, err = query.Refresh(ctx, ws.Cache, paymentConfigKey, fetch)
	} else {
		cfg, err = query.Fetch(ctx, ws.Cache, paymentConfigKey, fetch)
	}
	if err != nil {
		expire(ws, err)
		return domain.PaymentConfig{}, err
	}
	return cfg, nil
}

// Save applies a QR source. A file is uploaded first and the config is then
// updated with the URL the upload returned; a pasted URL is saved directly.
// The source can never carry both.
func (s *PaymentConfigService) Save(ctx context.Context, ws *ports.Workspace, src domain.QRSource) (domain.PaymentConfig, error) {
	if src.Empty() {
		return domain.PaymentConfig{}, fmt.Errorf("save payment config: %w", domain.ErrNothingToSave)
	}

	url := src.URL()
	if file, ok := src.File(); ok {
		if !domain.AcceptedImageType(file.ContentType) {
			return domain.PaymentConfig{}, fmt.Errorf("save payment config: %w: %s", domain.ErrUnsupportedImage, file.ContentType)
		}
		upload := mutation.Mutation[domain.Upload, string]{
			Name: "uploadScreenshot",
			Fn:   ws.API.UploadImage,
		}
		uploaded, err := upload.Run(ctx, ws.Runner, file)
		if err != nil {
			expire(ws, err)
			return domain.PaymentConfig{}, err
		}
		url = uploaded
	}

	update := mutation.Mutation[string, domain.PaymentConfig]{
		Name: "updatePaymentConfig",
		Fn:   ws.API.UpdatePaymentConfig,
		OnSuccess: func(_ context.Context, url string, _ domain.PaymentConfig) {
			ws.Cache.Invalidate(paymentConfigKey)
			ws.Runner.Success(PaymentConfigSaved)
			s.audit(ws, url)
		},
	}
	cfg, err := update.Run(ctx, ws.Runner, url)
	if err != nil {
		expire(ws, err)
		return domain.PaymentConfig{}, err
	}

	s.log.Info().Str("sid", ws.ID).Str("qr_url", url).Msg("payment config updated")
	return cfg, nil
}

func (s *PaymentConfigService) audit(ws *ports.Workspace, url string) {
	if s.activity == nil {
		return
	}
	entry := domain.Activity{
		ID:         uuid.NewString(),
		Action:     domain.ActionPaymentQRUpdate,
		TargetKind: "payment_config",
		TargetID:   "payment_config",
		Detail:     url,
		At:         s.now().UTC(),
	}
	if user := ws.Session.Snapshot().User; user != nil {
		entry.ActorID = user.ID
		entry.ActorEmail = user.Email
	}
	s.activity.Record(entry)
}
