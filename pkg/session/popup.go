package session

import (
	"fmt"
	"log"
	"strings"
	"sync"
)

// Contact is an emergency phone contact
type Contact struct {
	Name   string `yaml:"name"`
	Number string `yaml:"number"`
}

// URI returns the tel: link for the contact
func (c Contact) URI() string {
	return "tel:" + strings.ReplaceAll(c.Number, " ", "")
}

// DefaultContacts are the Brazilian emergency numbers
var DefaultContacts = []Contact{
	{Name: "Polícia Militar", Number: "190"},
	{Name: "SAMU", Number: "192"},
	{Name: "Bombeiros", Number: "193"},
	{Name: "Defesa Civil", Number: "199"},
}

// Popup is the emergency contacts popup. It starts hidden.
type Popup struct {
	mu       sync.Mutex
	visible  bool
	contacts []Contact
}

// NewPopup creates a hidden popup; no contacts means DefaultContacts
func NewPopup(contacts []Contact) *Popup {
	if len(contacts) == 0 {
		contacts = DefaultContacts
	}
	return &Popup{contacts: append([]Contact(nil), contacts...)}
}

// Toggle flips visibility and returns the new state
func (p *Popup) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = !p.visible
	return p.visible
}

func (p *Popup) Close() {
	p.mu.Lock()
	p.visible = false
	p.mu.Unlock()
}

// ClickOutside handles a click outside the popup body. Clicks on the trigger
// are left to Toggle.
func (p *Popup) ClickOutside(onTrigger bool) {
	if onTrigger {
		return
	}
	p.Close()
}

func (p *Popup) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

func (p *Popup) Contacts() []Contact {
	return append([]Contact(nil), p.contacts...)
}

// Call returns the tel: URI for contact i. Dialling is left to the host and
// the popup state is unchanged.
func (p *Popup) Call(i int) (string, error) {
	if i < 0 || i >= len(p.contacts) {
		return "", fmt.Errorf("no emergency contact %d", i)
	}
	c := p.contacts[i]
	log.Printf("calling %s: %s", c.Name, c.Number)
	return c.URI(), nil
}
