package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Sinanalungal/Image-Generator-Backend/internal/repository"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/cqrs"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/errs"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/events"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/models"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/utils"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/validation"
	"go.uber.org/zap"
)

const sniffLen = 512

// EventPublisher is satisfied by events.Publisher and events.NopPublisher.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// ListingReader is the read side the admin commands answer with.
type ListingReader interface {
	RefreshListing(ctx context.Context) ([]models.AccountView, error)
	InvalidateListing(ctx context.Context)
}

// ImageStore persists uploaded profile images and returns their key.
type ImageStore interface {
	Put(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

// AccountCommandService writes account state and keeps the listing cache and
// the event stream in sync.
type AccountCommandService struct {
	repo           repository.AccountRepository
	reader         ListingReader
	publisher      EventPublisher
	images         ImageStore
	schema         *validation.AccountSchema
	policy         *validation.PasswordPolicy
	maxUploadBytes int64
	log            *zap.Logger
}

func NewAccountCommandService(
	repo repository.AccountRepository,
	reader ListingReader,
	publisher EventPublisher,
	images ImageStore,
	schema *validation.AccountSchema,
	policy *validation.PasswordPolicy,
	maxUploadBytes int64,
	log *zap.Logger,
) *AccountCommandService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountCommandService{
		repo:           repo,
		reader:         reader,
		publisher:      publisher,
		images:         images,
		schema:         schema,
		policy:         policy,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

func (s *AccountCommandService) CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (*models.Account, error) {
	return s.create(ctx, cmd, false)
}

// CreateSuperuser registers an administrator in a single write. Only the
// bootstrap command calls it.
func (s *AccountCommandService) CreateSuperuser(ctx context.Context, cmd cqrs.CreateAccountCommand) (*models.Account, error) {
	return s.create(ctx, cmd, true)
}

func (s *AccountCommandService) create(ctx context.Context, cmd cqrs.CreateAccountCommand, admin bool) (*models.Account, error) {
	username := strings.TrimSpace(cmd.Username)
	email := utils.NormalizeEmail(cmd.Email)
	phone := strings.TrimSpace(cmd.PhoneNumber)

	v := s.schema.ValidateNew(username, email, phone)
	if err := s.checkUnique(ctx, v, email, phone, 0); err != nil {
		return nil, err
	}
	v.Merge(s.policy.Validate(cmd.Password,
		validation.UserAttribute{Name: validation.FieldUsername, Value: username},
		validation.UserAttribute{Name: validation.FieldEmail, Value: email},
	))
	if v.HasErrors() {
		return nil, v
	}

	hash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	account := &models.Account{
		Username:     username,
		Email:        email,
		PhoneNumber:  phone,
		PasswordHash: hash,
		IsActive:     true,
		IsListed:     true,
		IsStaff:      admin,
		IsSuperuser:  admin,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}

	s.reader.InvalidateListing(ctx)
	s.publish(ctx, events.AccountCreated, events.AccountCreatedEvent{
		AccountID: account.ID,
		Email:     account.Email,
		Username:  account.Username,
	})
	if admin {
		s.publish(ctx, events.AccountPromoted, events.AccountPromotedEvent{
			AccountID: account.ID,
			Email:     account.Email,
		})
	}
	return account, nil
}

// PromoteToAdmin grants staff and superuser status to an existing account.
// Only the bootstrap command calls it.
func (s *AccountCommandService) PromoteToAdmin(ctx context.Context, cmd cqrs.PromoteAccountCommand) (*models.Account, error) {
	account, err := s.repo.GetByID(ctx, cmd.AccountID)
	if err != nil {
		return nil, err
	}
	account.IsStaff = true
	account.IsSuperuser = true
	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}

	s.reader.InvalidateListing(ctx)
	s.publish(ctx, events.AccountPromoted, events.AccountPromotedEvent{
		AccountID: account.ID,
		Email:     account.Email,
	})
	return account, nil
}

// UpdateProfileImage stores the uploaded image and points the account at it.
// The previous image is left in the bucket.
func (s *AccountCommandService) UpdateProfileImage(ctx context.Context, cmd cqrs.UpdateProfileImageCommand) (*models.Account, error) {
	var account *models.Account
	var err error
	switch {
	case cmd.AccountID != 0:
		account, err = s.repo.GetByID(ctx, cmd.AccountID)
	case utils.IsBlank(cmd.Email):
		return nil, errs.FieldError(validation.FieldEmail, validation.Required.Message)
	default:
		account, err = s.repo.GetByEmail(ctx, cmd.Email)
	}
	if err != nil {
		return nil, err
	}

	body, contentType, v := s.checkImage(cmd.Image)
	if v.HasErrors() {
		return nil, v
	}
	key, err := s.images.Put(ctx, cmd.Image.Filename, contentType, body)
	if err != nil {
		return nil, err
	}

	previous := account.ProfileImage
	account.ProfileImage = key
	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}

	s.reader.InvalidateListing(ctx)
	s.publish(ctx, events.AccountProfileImageUpdated, events.AccountProfileImageUpdatedEvent{
		AccountID:   account.ID,
		ImageKey:    key,
		PreviousKey: previous,
	})
	return account, nil
}

// SelfUpdate applies a sparse patch to the caller's account. On any
// validation failure the stored record is left untouched.
func (s *AccountCommandService) SelfUpdate(ctx context.Context, cmd cqrs.SelfUpdateCommand) (*models.Account, error) {
	account, err := s.repo.GetByID(ctx, cmd.AccountID)
	if err != nil {
		return nil, err
	}
	cmd.Patch.IsListed = nil

	updated, fields, err := s.applyPatch(ctx, account, cmd.Patch)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return account, nil
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}

	s.reader.InvalidateListing(ctx)
	s.publish(ctx, events.AccountUpdated, events.AccountUpdatedEvent{
		AccountID: updated.ID,
		Email:     updated.Email,
		Fields:    fields,
	})
	return updated, nil
}

// AdminEdit patches any non-superuser account and returns the refreshed listing.
func (s *AccountCommandService) AdminEdit(ctx context.Context, cmd cqrs.AdminEditCommand) ([]models.AccountView, error) {
	if err := models.RequireAdministrator(cmd.RequestingRole); err != nil {
		return nil, err
	}
	account, err := s.adminTarget(ctx, cmd.AccountID)
	if err != nil {
		return nil, err
	}

	updated, fields, err := s.applyPatch(ctx, account, cmd.Patch)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := s.repo.Update(ctx, updated); err != nil {
			return nil, err
		}
		s.reader.InvalidateListing(ctx)
		s.publish(ctx, events.AccountUpdated, events.AccountUpdatedEvent{
			AccountID: updated.ID,
			Email:     updated.Email,
			Fields:    fields,
			ByAdmin:   true,
		})
	}
	return s.reader.RefreshListing(ctx)
}

// DeleteAccount hard-deletes a non-superuser account and returns the
// refreshed listing.
func (s *AccountCommandService) DeleteAccount(ctx context.Context, cmd cqrs.DeleteAccountCommand) ([]models.AccountView, error) {
	if err := models.RequireAdministrator(cmd.RequestingRole); err != nil {
		return nil, err
	}
	account, err := s.adminTarget(ctx, cmd.AccountID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, account.ID); err != nil {
		return nil, err
	}

	s.reader.InvalidateListing(ctx)
	s.publish(ctx, events.AccountDeleted, events.AccountDeletedEvent{
		AccountID: account.ID,
		Email:     account.Email,
	})
	return s.reader.RefreshListing(ctx)
}

// HandleAccountEvent is the audit consumer of the account event stream.
func (s *AccountCommandService) HandleAccountEvent(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event.Type, err)
	}
	s.log.Info("account event",
		zap.String("type", event.Type),
		zap.Time("timestamp", event.Timestamp),
		zap.ByteString("data", data),
	)
	return nil
}

// adminTarget loads an account for an admin surface. Superusers are invisible
// there and reported as not found.
func (s *AccountCommandService) adminTarget(ctx context.Context, id int64) (*models.Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.IsSuperuser {
		return nil, errs.ErrNotFound
	}
	return account, nil
}

// applyPatch validates p against current and returns the staged record plus
// the names of the fields it changes. current is never modified.
func (s *AccountCommandService) applyPatch(ctx context.Context, current *models.Account, p models.AccountPatch) (*models.Account, []string, error) {
	p = normalizePatch(p)
	v := s.schema.ValidatePatch(p)

	next := current.Clone()
	var fields []string
	if p.Username != nil && *p.Username != current.Username {
		next.Username = *p.Username
		fields = append(fields, validation.FieldUsername)
	}
	if p.Email != nil && *p.Email != current.Email {
		next.Email = *p.Email
		fields = append(fields, validation.FieldEmail)
	}
	if p.PhoneNumber != nil && *p.PhoneNumber != current.PhoneNumber {
		next.PhoneNumber = *p.PhoneNumber
		fields = append(fields, validation.FieldPhoneNumber)
	}
	if p.IsListed != nil && *p.IsListed != current.IsListed {
		next.IsListed = *p.IsListed
		fields = append(fields, "is_listed")
	}

	email, phone := "", ""
	if p.Email != nil {
		email = next.Email
	}
	if p.PhoneNumber != nil {
		phone = next.PhoneNumber
	}
	if err := s.checkUnique(ctx, v, email, phone, current.ID); err != nil {
		return nil, nil, err
	}

	if p.Password != nil {
		v.Merge(s.policy.Validate(*p.Password,
			validation.UserAttribute{Name: validation.FieldUsername, Value: next.Username},
			validation.UserAttribute{Name: validation.FieldEmail, Value: next.Email},
		))
	}
	if v.HasErrors() {
		return nil, nil, v
	}

	if p.Password != nil {
		hash, err := utils.HashPassword(*p.Password)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to hash password: %w", err)
		}
		next.PasswordHash = hash
		fields = append(fields, validation.FieldPassword)
	}
	return next, fields, nil
}

// checkUnique adds a uniqueness message for email and phone unless the value
// is empty or already failed the schema. The store enforces the same rule on
// write; this pass only reports every conflicting field at once.
func (s *AccountCommandService) checkUnique(ctx context.Context, v *errs.ValidationError, email, phone string, excludeID int64) error {
	if email != "" && len(v.Fields[validation.FieldEmail]) == 0 {
		taken, err := s.repo.EmailTaken(ctx, email, excludeID)
		if err != nil {
			return err
		}
		if taken {
			v.Add(validation.FieldEmail, validation.MsgEmailTaken)
		}
	}
	if phone != "" && len(v.Fields[validation.FieldPhoneNumber]) == 0 {
		taken, err := s.repo.PhoneTaken(ctx, phone, excludeID)
		if err != nil {
			return err
		}
		if taken {
			v.Add(validation.FieldPhoneNumber, validation.MsgPhoneTaken)
		}
	}
	return nil
}

// checkImage rejects missing, empty, oversized and non-image uploads. The
// returned reader replays the sniffed prefix.
func (s *AccountCommandService) checkImage(img *cqrs.ImageAsset) (io.Reader, string, *errs.ValidationError) {
	if img == nil || img.Body == nil {
		return nil, "", errs.FieldError(validation.FieldProfile, "No file was submitted.")
	}
	if img.Size == 0 {
		return nil, "", errs.FieldError(validation.FieldProfile, "The submitted file is empty.")
	}
	if s.maxUploadBytes > 0 && img.Size > s.maxUploadBytes {
		return nil, "", errs.FieldError(validation.FieldProfile,
			fmt.Sprintf("Ensure this file is at most %d bytes.", s.maxUploadBytes))
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(img.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, "", errs.FieldError(validation.FieldProfile, "The submitted file could not be read.")
	}
	head = head[:n]
	if n == 0 {
		return nil, "", errs.FieldError(validation.FieldProfile, "The submitted file is empty.")
	}

	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", errs.FieldError(validation.FieldProfile,
			"Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}
	return io.MultiReader(bytes.NewReader(head), img.Body), contentType, nil
}

func (s *AccountCommandService) publish(ctx context.Context, eventType string, data any) {
	if err := s.publisher.Publish(ctx, events.AccountEventsStream, eventType, data); err != nil {
		s.log.Warn("failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}

// normalizePatch trims string fields and drops the ones left blank. Passwords
// are kept verbatim unless entirely blank.
func normalizePatch(p models.AccountPatch) models.AccountPatch {
	trim := func(s *string) *string {
		if s == nil || utils.IsBlank(*s) {
			return nil
		}
		t := strings.TrimSpace(*s)
		return &t
	}
	out := models.AccountPatch{
		Username:    trim(p.Username),
		PhoneNumber: trim(p.PhoneNumber),
		IsListed:    p.IsListed,
	}
	if p.Email != nil && !utils.IsBlank(*p.Email) {
		e := utils.NormalizeEmail(*p.Email)
		out.Email = &e
	}
	if p.Password != nil && !utils.IsBlank(*p.Password) {
		pw := *p.Password
		out.Password = &pw
	}
	return out
}
