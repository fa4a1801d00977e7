package clients

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"realtor/app/listview"
	"realtor/app/matching"
	"realtor/app/models"
	"realtor/core/email"
	"realtor/core/emitter"
	"realtor/core/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CreateClientEvent      = "clients.create"
	UpdateClientEvent      = "clients.update"
	ArchiveClientEvent     = "clients.archive"
	IntakeTokenIssuedEvent = "clients.intake_token"
)

type ClientService struct {
	DB            *gorm.DB
	Emitter       *emitter.Emitter
	Logger        logger.Logger
	Email         email.Sender
	PublicBaseURL string
}

func NewClientService(db *gorm.DB, emitter *emitter.Emitter, sender email.Sender, logger logger.Logger, publicBaseURL string) *ClientService {
	return &ClientService{
		DB:            db,
		Emitter:       emitter,
		Logger:        logger,
		Email:         sender,
		PublicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// List returns the non-archived clients matching q, sorted by last then
// first name. The store query only narrows; matching.Filter decides.
func (s *ClientService) List(ctx context.Context, q string) ([]models.Client, error) {
	tokens := matching.Tokenize(q)

	var items []models.Client
	if err := s.DB.WithContext(ctx).
		Scopes(matching.StoreScope(tokens, models.ClientSearchColumns())).
		Find(&items).Error; err != nil {
		s.Logger.Error("failed to list clients", logger.Err(err), logger.String("q", q))
		return nil, err
	}

	items = matching.Filter(items, tokens)
	models.SortClients(items)
	return items, nil
}

// Options returns every non-archived client as a select option
func (s *ClientService) Options(ctx context.Context) ([]*models.ClientSelectOption, error) {
	items, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([]*models.ClientSelectOption, 0, len(items))
	for i := range items {
		out = append(out, items[i].ToSelectOption())
	}
	return out, nil
}

// GetById answers ErrNotFound for unknown and archived ids alike
func (s *ClientService) GetById(ctx context.Context, id uint) (*models.Client, error) {
	return findClient(s.DB.WithContext(ctx), id)
}

func (s *ClientService) Create(ctx context.Context, req *models.ClientRequest) (*models.Client, error) {
	item := &models.Client{}
	if err := req.Apply(item); err != nil {
		return nil, err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(tx, item.Email, 0); err != nil {
			return err
		}
		return translate(tx.Create(item).Error)
	})
	if err != nil {
		if !errors.Is(err, models.ErrEmailConflict) {
			s.Logger.Error("failed to create client", logger.Err(err))
		}
		return nil, err
	}

	s.Emitter.Emit(CreateClientEvent, item)
	return item, nil
}

// Update replaces every field of the client
func (s *ClientService) Update(ctx context.Context, id uint, req *models.ClientRequest) (*models.Client, error) {
	var item *models.Client
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := findClient(tx, id)
		if err != nil {
			return err
		}
		draft := listview.Open(*found)
		if err := draft.Edit(req.Apply); err != nil {
			return err
		}
		saved, err := draft.Save(func(c models.Client) (models.Client, error) {
			if err := ensureEmailFree(tx, c.Email, c.Id); err != nil {
				return c, err
			}
			err := translate(tx.Save(&c).Error)
			return c, err
		})
		if err != nil {
			return err
		}
		item = &saved
		return nil
	})
	if err != nil {
		if !isExpected(err) {
			s.Logger.Error("failed to update client", logger.Err(err), logger.Uint("id", id))
		}
		return nil, err
	}

	s.Emitter.Emit(UpdateClientEvent, item)
	return item, nil
}

// Archive soft-deletes the client
func (s *ClientService) Archive(ctx context.Context, id uint) error {
	db := s.DB.WithContext(ctx)
	item, err := findClient(db, id)
	if err != nil {
		return err
	}
	if err := db.Delete(item).Error; err != nil {
		s.Logger.Error("failed to archive client", logger.Err(err), logger.Uint("id", id))
		return err
	}

	s.Emitter.Emit(ArchiveClientEvent, item)
	return nil
}

// ExportCSV renders non-archived clients as "First Name","Last Name","Email"
func (s *ClientService) ExportCSV(ctx context.Context) ([]byte, error) {
	items, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(items)+1)
	lines = append(lines, csvLine("First Name", "Last Name", "Email"))
	for _, c := range items {
		lines = append(lines, csvLine(c.FirstName, c.LastName, matching.Text(c.Email)))
	}
	return []byte(strings.Join(lines, "\n")), nil
}

// csvLine quotes every cell, doubling embedded quotes
func csvLine(cells ...string) string {
	quoted := make([]string, len(cells))
	for i, c := range cells {
		quoted[i] = `"` + strings.ReplaceAll(c, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

// IssueIntakeToken replaces the client's intake token and returns the
// shareable link. With send, the link is emailed to the client.
func (s *ClientService) IssueIntakeToken(ctx context.Context, id uint, send bool) (*models.IntakeTokenResponse, error) {
	db := s.DB.WithContext(ctx)
	item, err := findClient(db, id)
	if err != nil {
		return nil, err
	}
	if send && item.Email == nil {
		return nil, &models.ValidationError{Field: "email", Message: "client has no email address"}
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	resp := &models.IntakeTokenResponse{Ok: true, Token: token, URL: s.intakeURL(token)}

	// the link is mailed before it replaces the old token, so a failed
	// send leaves the previously shared link working
	if send {
		err := s.Email.Send(email.Message{
			To:      []string{*item.Email},
			Subject: "Please review your details",
			Body: fmt.Sprintf("Hi %s,\n\nPlease review and update your details here:\n%s\n\nThis link can be used once.\n",
				item.FirstName, resp.URL),
			Tag: "intake-link",
		})
		if err != nil {
			s.Logger.Error("failed to send intake link", logger.Err(err), logger.Uint("id", id))
			return nil, fmt.Errorf("failed to send intake link: %w", err)
		}
		resp.Sent = true
	}

	now := time.Now().UTC()
	if err := db.Model(item).Updates(map[string]any{
		"intake_token":           token,
		"intake_token_issued_at": now,
	}).Error; err != nil {
		s.Logger.Error("failed to store intake token", logger.Err(err), logger.Uint("id", id))
		return nil, err
	}

	s.Emitter.Emit(IntakeTokenIssuedEvent, item)
	return resp, nil
}

func (s *ClientService) intakeURL(token string) string {
	return s.PublicBaseURL + "/intake/" + token
}

// BulkEmails collects the addresses of the effective selection among the
// clients matching req.Q. Selected ids outside that result are ignored.
func (s *ClientService) BulkEmails(ctx context.Context, req *models.BulkEmailRequest) (*models.BulkEmailResponse, error) {
	view := listview.NewState[*models.Client]()
	gen := view.SetQuery(req.Q)

	items, err := s.List(ctx, view.Query())
	if err != nil {
		return nil, err
	}
	visible := make([]*models.Client, len(items))
	for i := range items {
		visible[i] = &items[i]
	}
	view.Apply(gen, visible)
	for _, id := range req.Ids {
		view.Select(id, true)
	}

	emails := listview.CollectEmails(view.Effective(), func(c *models.Client) string {
		return matching.Text(c.Email)
	})
	return &models.BulkEmailResponse{
		Emails: emails,
		Bcc:    strings.Join(emails, ","),
		Mailto: mailtoBcc(emails),
	}, nil
}

// mailtoBcc escapes each address so "&", "?" or "%" cannot break the link
func mailtoBcc(emails []string) string {
	escaped := make([]string, len(emails))
	for i, e := range emails {
		escaped[i] = url.QueryEscape(e)
	}
	return "mailto:?bcc=" + strings.Join(escaped, ",")
}

func findClient(db *gorm.DB, id uint) (*models.Client, error) {
	item := &models.Client{}
	if err := db.First(item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

// ensureEmailFree checks archived rows too, since they keep their email
// under the unique index.
func ensureEmailFree(tx *gorm.DB, email *string, exceptId uint) error {
	if email == nil {
		return nil
	}
	var count int64
	if err := tx.Unscoped().Model(&models.Client{}).
		Where("email = ? AND id <> ?", *email, exceptId).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return models.ErrEmailConflict
	}
	return nil
}

// translate maps a unique-index violation to ErrEmailConflict
func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.ErrEmailConflict
	}
	return err
}

func isExpected(err error) bool {
	return errors.Is(err, models.ErrNotFound) ||
		errors.Is(err, models.ErrValidation) ||
		errors.Is(err, models.ErrEmailConflict)
}
