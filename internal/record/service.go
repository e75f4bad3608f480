// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package record

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/moraes/isbn"

	"github.com/taibuivan/readanddownload/internal/platform/apperr"
	"github.com/taibuivan/readanddownload/internal/platform/dberr"
	"github.com/taibuivan/readanddownload/internal/platform/notify"
	"github.com/taibuivan/readanddownload/internal/platform/validate"
	"github.com/taibuivan/readanddownload/pkg/textnorm"
)

// Validation messages.
const (
	MsgRequired      = "Faltan datos obligatorios"
	MsgTitleLength   = "El título debe tener entre 3 y 121 caracteres."
	MsgLanguage      = "El idioma debe ser uno de los siguientes: en, es, fr, de, it, pt."
	MsgISBN          = "El ISBN no es válido. Debe ser ISBN-10 o ISBN-13."
	MsgISBNChecksum  = "El ISBN no supera la verificación de dígito de control."
	MsgUserIDMissing = "El parámetro userId es obligatorio."
)

var isbnPattern = regexp.MustCompile(`^(?:\d{9}X|\d{10}|\d{13})$`)

// Notifier pushes a payload to a sibling service.
type Notifier interface {
	Patch(ctx context.Context, service notify.Service, path, bearer string, payload any) error
}

// Options tunes a [Service].
type Options struct {
	// StoreTimeout bounds every repository call. Zero disables the bound.
	StoreTimeout time.Duration
	// StrictISBN adds the checksum rule after the pattern rule.
	StrictISBN bool
	// Now is the clock used for creation dates. Defaults to time.Now.
	Now func() time.Time
}

// Service runs the validate, persist and notify workflow for one [Kind].
type Service struct {
	kind     Kind
	repo     Repository
	notifier Notifier
	opts     Options
	logger   *slog.Logger
}

func NewService(kind Kind, repo Repository, notifier Notifier, opts Options, logger *slog.Logger) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		kind:     kind,
		repo:     repo,
		notifier: notifier,
		opts:     opts,
		logger:   logger.With(slog.String("kind", kind.Name)),
	}
}

// Kind returns the kind the service manages.
func (service *Service) Kind() Kind {
	return service.kind
}

func (service *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if service.opts.StoreTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, service.opts.StoreTimeout)
}

// translate swaps generic store errors for the kind's own messages.
func (service *Service) translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, dberr.ErrNotFound):
		return apperr.NotFound(service.kind.Messages.NotFound)
	case apperr.HasCode(err, apperr.CodeConflict):
		return apperr.Conflict(service.kind.Messages.Duplicate).WithCause(err)
	default:
		return err
	}
}

// # Validation

func normalize(input Input) Input {
	return Input{
		UserID:   strings.TrimSpace(input.UserID),
		ISBN:     textnorm.Compact(input.ISBN),
		Title:    textnorm.Clean(input.Title),
		Author:   textnorm.Clean(input.Author),
		Language: strings.TrimSpace(input.Language),
		Format:   textnorm.Upper(input.Format),
	}
}

func (service *Service) validate(r *Record) error {
	validator := &validate.Validator{}

	validator.
		Required(MsgRequired,
			validate.F(FieldUserID, r.UserID),
			validate.F(FieldISBN, r.ISBN),
			validate.F(FieldTitle, r.Title),
			validate.F(FieldAuthor, r.Author),
			validate.F(FieldLanguage, r.Language),
		).
		LenBetween(FieldTitle, r.Title, TitleMinLen, TitleMaxLen, MsgTitleLength).
		OneOf(FieldLanguage, r.Language, Languages, MsgLanguage).
		OneOf(FieldFormat, r.Format, service.kind.Formats, service.kind.FormatMessage()).
		Matches(FieldISBN, r.ISBN, isbnPattern, MsgISBN)

	if service.opts.StrictISBN {
		validator.Custom(FieldISBN, !isbn.Validate(r.ISBN), MsgISBNChecksum)
	}

	return validator.Err()
}

// # Queries

// List returns every record in insertion order.
func (service *Service) List(ctx context.Context) ([]*Record, error) {
	ctx, cancel := service.storeContext(ctx)
	defer cancel()

	records, err := service.repo.FindAll(ctx)
	return records, service.translate(err)
}

// Get returns one record. Unknown and malformed ids are NOT_FOUND.
func (service *Service) Get(ctx context.Context, id string) (*Record, error) {
	ctx, cancel := service.storeContext(ctx)
	defer cancel()

	record, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return nil, service.translate(err)
	}
	return record, nil
}

// # Commands

// Create validates and stores a new record. Format defaults to PDF and the
// date is the UTC creation day.
func (service *Service) Create(ctx context.Context, input Input) (*Record, error) {
	input = normalize(input)
	if input.Format == "" {
		input.Format = DefaultFormat
	}

	now := service.opts.Now().UTC()
	record := &Record{
		UserID:    input.UserID,
		ISBN:      input.ISBN,
		Title:     input.Title,
		Author:    input.Author,
		Language:  input.Language,
		Format:    input.Format,
		Date:      now.Format(DateLayout),
		CreatedAt: now,
	}

	if err := service.validate(record); err != nil {
		return nil, err
	}

	storeCtx, cancel := service.storeContext(ctx)
	defer cancel()

	if err := service.repo.Create(storeCtx, record); err != nil {
		return nil, service.translate(err)
	}

	service.logger.InfoContext(ctx, "record_created",
		slog.String("record_id", record.ID),
		slog.String("isbn", record.ISBN),
		slog.String("user_id", record.UserID),
	)
	return record, nil
}

// Update merges the non-empty input fields into the stored record,
// re-validates the result and saves it.
func (service *Service) Update(ctx context.Context, id string, input Input) (*Record, error) {
	input = normalize(input)

	existing, err := service.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *existing
	mergeField(&merged.UserID, input.UserID)
	mergeField(&merged.ISBN, input.ISBN)
	mergeField(&merged.Title, input.Title)
	mergeField(&merged.Author, input.Author)
	mergeField(&merged.Language, input.Language)
	mergeField(&merged.Format, input.Format)

	if err := service.validate(&merged); err != nil {
		return nil, err
	}

	storeCtx, cancel := service.storeContext(ctx)
	defer cancel()

	if err := service.repo.Update(storeCtx, &merged); err != nil {
		return nil, service.translate(err)
	}

	service.logger.InfoContext(ctx, "record_updated", slog.String("record_id", merged.ID))
	return &merged, nil
}

func mergeField(target *string, value string) {
	if value != "" {
		*target = value
	}
}

// Delete removes a record.
func (service *Service) Delete(ctx context.Context, id string) error {
	storeCtx, cancel := service.storeContext(ctx)
	defer cancel()

	if err := service.repo.DeleteByID(storeCtx, id); err != nil {
		return service.translate(err)
	}

	service.logger.WarnContext(ctx, "record_deleted", slog.String("record_id", id))
	return nil
}

// # Counters

// CountByISBN counts the records of a book and pushes the result to the
// catalogue service. Zero matches is NOT_FOUND and nothing is pushed.
func (service *Service) CountByISBN(ctx context.Context, bookISBN, bearer string) (int64, error) {
	bookISBN = textnorm.Compact(bookISBN)

	validator := &validate.Validator{}
	validator.Matches(FieldISBN, bookISBN, isbnPattern, MsgISBN)
	if err := validator.Err(); err != nil {
		return 0, err
	}

	count, err := service.count(ctx, ByISBN, bookISBN)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, apperr.NotFound(service.kind.Messages.NoneForBook)
	}

	path := "/api/v1/books/" + url.PathEscape(bookISBN) + "/" + service.kind.CounterSegment
	if err := service.push(ctx, notify.Catalogue, path, bearer, count); err != nil {
		return 0, err
	}

	return count, nil
}

// CountByUser counts the records of a user and pushes the result to the users
// service. It returns the count and the confirmation message.
func (service *Service) CountByUser(ctx context.Context, userID, bearer string) (int64, string, error) {
	userID = strings.TrimSpace(userID)

	validator := &validate.Validator{}
	validator.Required(MsgUserIDMissing, validate.F(FieldUserID, userID))
	if err := validator.Err(); err != nil {
		return 0, "", err
	}

	count, err := service.count(ctx, ByUser, userID)
	if err != nil {
		return 0, "", err
	}
	if count == 0 {
		return 0, "", apperr.NotFound(service.kind.Messages.NoneForUser)
	}

	path := "/api/v1/users/" + url.PathEscape(userID) + "/" + service.kind.CounterSegment
	if err := service.push(ctx, notify.Users, path, bearer, count); err != nil {
		return 0, "", err
	}

	return count, service.kind.userCountMessage(userID, count), nil
}

func (service *Service) count(ctx context.Context, field CountField, value string) (int64, error) {
	storeCtx, cancel := service.storeContext(ctx)
	defer cancel()

	count, err := service.repo.CountWhere(storeCtx, field, value)
	return count, service.translate(err)
}

func (service *Service) push(ctx context.Context, target notify.Service, path, bearer string, count int64) error {
	payload := map[string]int64{service.kind.CounterField: count}

	if err := service.notifier.Patch(ctx, target, path, bearer, payload); err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "counter_pushed",
		slog.String("service", target.String()),
		slog.String("path", path),
		slog.Int64("count", count),
	)
	return nil
}

// Ping checks that the store answers.
func (service *Service) Ping(ctx context.Context) error {
	ctx, cancel := service.storeContext(ctx)
	defer cancel()

	return service.repo.Ping(ctx)
}
