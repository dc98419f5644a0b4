// ABOUTME: Wire payloads for the GHL contacts and workflow endpoints
// ABOUTME: Decodes responses with goccy/go-json and validates them before they reach the sync
package ghl

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/harperreed/hireos/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type contactPayload struct {
	ID          string  `json:"id" validate:"required"`
	ContactName *string `json:"contactName,omitempty"`
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	Email       *string `json:"email,omitempty"`
}

type contactListPayload struct {
	Contacts []contactPayload `json:"contacts" validate:"required,dive"`
}

type contactEnvelope struct {
	Contact contactPayload `json:"contact" validate:"required"`
}

type workflowResponse struct {
	Succeded *bool `json:"succeded,omitempty"`
}

// ContactUpdate is the body of a legacy contact update. Nil fields are left untouched.
type ContactUpdate struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// displayName prefers contactName and falls back to "first last".
func (p contactPayload) displayName() *string {
	if p.ContactName != nil && strings.TrimSpace(*p.ContactName) != "" {
		name := *p.ContactName
		return &name
	}

	var parts []string
	for _, part := range []*string{p.FirstName, p.LastName} {
		if part != nil && strings.TrimSpace(*part) != "" {
			parts = append(parts, strings.TrimSpace(*part))
		}
	}
	if len(parts) == 0 {
		return nil
	}

	name := strings.Join(parts, " ")
	return &name
}

func (p contactPayload) toModel() models.RemoteContact {
	rc := models.RemoteContact{
		ID:          p.ID,
		DisplayName: p.displayName(),
	}
	if p.Email != nil && *p.Email != "" {
		email := *p.Email
		rc.Email = &email
	}
	return rc
}

func decodePayload(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

func decodeContactList(r io.Reader) ([]models.RemoteContact, error) {
	var payload contactListPayload
	if err := decodePayload(r, &payload); err != nil {
		return nil, err
	}

	contacts := make([]models.RemoteContact, 0, len(payload.Contacts))
	for _, c := range payload.Contacts {
		contacts = append(contacts, c.toModel())
	}
	return contacts, nil
}

func decodeContact(r io.Reader) (*models.RemoteContact, error) {
	var payload contactEnvelope
	if err := decodePayload(r, &payload); err != nil {
		return nil, err
	}

	rc := payload.Contact.toModel()
	return &rc, nil
}
