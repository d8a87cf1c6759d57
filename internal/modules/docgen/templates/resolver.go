package templates

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

type SystemTemplates interface {
	Get(name string) (documents.TemplateSpec, bool)
}

// UserTemplates looks up a template by id restricted to its owner.
// Absent and foreign templates both return (nil, nil).
type UserTemplates interface {
	GetForOwner(ctx context.Context, id uuid.UUID, ownerEmail string) (*documents.UserTemplate, error)
}

type Resolver struct {
	log    *logger.Logger
	system SystemTemplates
	users  UserTemplates
}

func NewResolver(log *logger.Logger, system SystemTemplates, users UserTemplates) *Resolver {
	return &Resolver{
		log:    log.With("service", "TemplateResolver"),
		system: system,
		users:  users,
	}
}

// Resolve returns the template for (source, ref). An empty source with a ref is a legacy
// system reference. User templates that are missing or owned by someone else are reported
// identically as not found.
func (r *Resolver) Resolve(ctx context.Context, source, ref, ownerEmail string) (documents.TemplateSpec, error) {
	const op = "templates.Resolve"
	source = strings.ToLower(strings.TrimSpace(source))
	ref = strings.TrimSpace(ref)

	if source == "" && ref != "" {
		r.log.Warn("legacy template reference, treating as system template", "template_ref", ref)
		source = documents.TemplateSourceSystem
	}
	if ref == "" {
		return documents.TemplateSpec{}, domainagg.NewError(domainagg.CodeValidation, op, "template reference is required", nil)
	}

	switch source {
	case documents.TemplateSourceSystem:
		spec, ok := r.system.Get(ref)
		if !ok {
			return documents.TemplateSpec{}, domainagg.NewError(domainagg.CodeNotFound, op,
				fmt.Sprintf("system template %q not found", ref), nil)
		}
		return spec, nil
	case documents.TemplateSourceUser:
		return r.resolveUser(ctx, ref, ownerEmail)
	default:
		return documents.TemplateSpec{}, domainagg.NewError(domainagg.CodeValidation, op,
			fmt.Sprintf("invalid template source %q, expected system or user", source), nil)
	}
}

func (r *Resolver) resolveUser(ctx context.Context, ref, ownerEmail string) (documents.TemplateSpec, error) {
	const op = "templates.ResolveUser"
	notFound := domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("user template %q not found", ref), nil)

	id, err := uuid.Parse(ref)
	if err != nil {
		return documents.TemplateSpec{}, notFound
	}
	owner := strings.TrimSpace(ownerEmail)
	if owner == "" || r.users == nil {
		return documents.TemplateSpec{}, notFound
	}
	tmpl, err := r.users.GetForOwner(ctx, id, owner)
	if err != nil {
		return documents.TemplateSpec{}, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if tmpl == nil || !strings.EqualFold(strings.TrimSpace(tmpl.OwnerEmail), owner) {
		r.log.Warn("user template not found or not owned", "template_id", id.String(), "owner_email", owner)
		return documents.TemplateSpec{}, notFound
	}
	spec, err := ParseStructure(tmpl.Name, tmpl.Structure)
	if err != nil {
		return documents.TemplateSpec{}, domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
	}
	spec.Source = documents.TemplateSourceUser
	return spec, nil
}

// ForDocument applies the document precedence: user template id, then system template name,
// then the default system template.
func (r *Resolver) ForDocument(ctx context.Context, doc *documents.Document, ownerEmail string) (documents.TemplateSpec, error) {
	switch {
	case doc == nil:
		return r.Resolve(ctx, documents.TemplateSourceSystem, documents.DefaultTemplateName, ownerEmail)
	case doc.TemplateID != nil && *doc.TemplateID != uuid.Nil:
		return r.Resolve(ctx, documents.TemplateSourceUser, doc.TemplateID.String(), ownerEmail)
	case strings.TrimSpace(doc.TemplateName) != "":
		return r.Resolve(ctx, documents.TemplateSourceSystem, doc.TemplateName, ownerEmail)
	default:
		return r.Resolve(ctx, documents.TemplateSourceSystem, documents.DefaultTemplateName, ownerEmail)
	}
}
