package contacts

import (
	"context"

	"propertyvoice_backend/platform/apperr"
	"propertyvoice_backend/platform/logger"
	"propertyvoice_backend/platform/phone"
)

// Resolution describes who was on the line. Resolve never fails: a caller
// the system has never seen resolves to an unpersisted prospect, and a
// missing phone number resolves to the unknown-caller sentinel.
type Resolution struct {
	Contact Contact
	// Known is true when the contact exists in the database.
	Known bool
	// Unknown is true when no phone number was available at all.
	Unknown bool
}

// Resolver maps caller phone numbers to contact identities.
type Resolver struct {
	repo *Repository
	log  *logger.Logger
}

func NewResolver(repo *Repository, log *logger.Logger) *Resolver {
	return &Resolver{repo: repo, log: log}
}

// Resolve looks up the caller by phone. Database errors degrade to an
// unknown prospect rather than failing the pipeline; identity enrichment
// is never worth losing a call record over.
func (r *Resolver) Resolve(ctx context.Context, callerPhone string) Resolution {
	normalized := phone.NormalizeE164(callerPhone)
	if normalized == "" {
		return Resolution{
			Contact: Contact{ContactType: TypeOther},
			Unknown: true,
		}
	}

	contact, err := r.repo.GetByPhone(ctx, normalized)
	if err != nil {
		if apperr.GetKind(err) != apperr.KindNotFound {
			r.log.DatabaseError("contacts.Resolve", err)
		}
		return Resolution{
			Contact: Contact{Phone: normalized, ContactType: TypeProspect},
			Known:   false,
		}
	}

	return Resolution{Contact: contact, Known: true}
}

// Persist records the resolved caller: find-or-create by phone, then bump
// the call counter. Called only when a call record is actually persisted.
func (r *Resolver) Persist(ctx context.Context, res Resolution) (Contact, error) {
	if res.Unknown {
		return Contact{}, apperr.BadRequest("no phone number to persist").WithOp("contacts.Persist")
	}

	contact, err := r.repo.FindOrCreate(ctx, res.Contact.Phone, res.Contact.Name, res.Contact.Email, res.Contact.ContactType)
	if err != nil {
		return Contact{}, err
	}

	if err := r.repo.IncrementCallCount(ctx, contact.ID); err != nil {
		return Contact{}, err
	}
	contact.CallCount++
	return contact, nil
}
