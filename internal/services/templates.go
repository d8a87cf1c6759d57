package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/vorhaben-backend/internal/data/repos"
	domainagg "github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/templates"
	"github.com/yungbote/vorhaben-backend/internal/pkg/dbctx"
	"github.com/yungbote/vorhaben-backend/internal/platform/ctxutil"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

type TemplateSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Sections    int    `json:"section_count"`
}

type TemplateService interface {
	ListSystem() []TemplateSummary
	GetSystem(name string) (documents.TemplateSpec, error)

	CreateUserTemplate(ctx context.Context, name, description string, structure json.RawMessage) (*documents.UserTemplate, error)
	ListUserTemplates(ctx context.Context) ([]*documents.UserTemplate, error)
	GetUserTemplate(ctx context.Context, id uuid.UUID) (*documents.UserTemplate, error)

	Resolver() *templates.Resolver
}

type templateService struct {
	log      *logger.Logger
	registry *templates.Registry
	users    repos.UserTemplateRepo
	resolver *templates.Resolver
}

func NewTemplateService(log *logger.Logger, registry *templates.Registry, users repos.UserTemplateRepo) TemplateService {
	serviceLog := log.With("service", "TemplateService")
	return &templateService{
		log:      serviceLog,
		registry: registry,
		users:    users,
		resolver: templates.NewResolver(log, registry, userTemplateLookup{users: users}),
	}
}

func (s *templateService) Resolver() *templates.Resolver { return s.resolver }

func (s *templateService) ListSystem() []TemplateSummary {
	names := s.registry.Names()
	out := make([]TemplateSummary, 0, len(names))
	for _, name := range names {
		spec, ok := s.registry.Get(name)
		if !ok {
			continue
		}
		out = append(out, TemplateSummary{Name: name, Description: spec.Description, Sections: len(spec.Sections)})
	}
	return out
}

func (s *templateService) GetSystem(name string) (documents.TemplateSpec, error) {
	return s.resolver.Resolve(context.Background(), documents.TemplateSourceSystem, name, "")
}

func (s *templateService) CreateUserTemplate(ctx context.Context, name, description string, structure json.RawMessage) (*documents.UserTemplate, error) {
	const op = "templates.CreateUserTemplate"
	owner := ctxutil.OwnerEmail(ctx)
	if owner == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "owner identity is required", nil)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "template name is required", nil)
	}
	if _, err := templates.ParseStructure(name, structure); err != nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
	}
	row := &documents.UserTemplate{
		OwnerEmail:  owner,
		Name:        name,
		Description: strings.TrimSpace(description),
		Structure:   datatypes.JSON(structure),
	}
	if err := s.users.Create(dbctx.Context{Ctx: ctx}, row); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	s.log.Info("user template created", "template_id", row.ID, "owner_email", owner)
	return row, nil
}

func (s *templateService) ListUserTemplates(ctx context.Context) ([]*documents.UserTemplate, error) {
	const op = "templates.ListUserTemplates"
	owner := ctxutil.OwnerEmail(ctx)
	if owner == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "owner identity is required", nil)
	}
	rows, err := s.users.ListByOwner(dbctx.Context{Ctx: ctx}, owner, 0)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return rows, nil
}

func (s *templateService) GetUserTemplate(ctx context.Context, id uuid.UUID) (*documents.UserTemplate, error) {
	const op = "templates.GetUserTemplate"
	row, err := (userTemplateLookup{users: s.users}).GetForOwner(ctx, id, ctxutil.OwnerEmail(ctx))
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if row == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "user template not found", nil)
	}
	return row, nil
}

// userTemplateLookup adapts the repo to the resolver port, folding missing rows into (nil, nil).
type userTemplateLookup struct {
	users repos.UserTemplateRepo
}

func (l userTemplateLookup) GetForOwner(ctx context.Context, id uuid.UUID, ownerEmail string) (*documents.UserTemplate, error) {
	if l.users == nil || id == uuid.Nil || strings.TrimSpace(ownerEmail) == "" {
		return nil, nil
	}
	row, err := l.users.GetForOwner(dbctx.Context{Ctx: ctx}, id, ownerEmail)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}
