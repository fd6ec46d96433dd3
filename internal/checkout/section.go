package checkout

import "fmt"

// Section is one step of the checkout wizard.
type Section string

const (
	SectionSummary  Section = "summary"
	SectionContact  Section = "contact"
	SectionDelivery Section = "delivery"
	SectionPayment  Section = "payment"
)

var sectionOrder = []Section{SectionSummary, SectionContact, SectionDelivery, SectionPayment}

var sectionTitles = map[Section]string{
	SectionSummary:  "Order Summary",
	SectionContact:  "Contact Information",
	SectionDelivery: "Delivery Address",
	SectionPayment:  "Payment Options",
}

// Sections returns the wizard sections in order.
func Sections() []Section {
	out := make([]Section, len(sectionOrder))
	copy(out, sectionOrder)
	return out
}

func ParseSection(s string) (Section, error) {
	for _, sec := range sectionOrder {
		if string(sec) == s {
			return sec, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSection, s)
}

// Index is the position of s in the wizard, or -1.
func (s Section) Index() int {
	for i, sec := range sectionOrder {
		if sec == s {
			return i
		}
	}
	return -1
}

func (s Section) Title() string { return sectionTitles[s] }

// Next returns the following section, false on the last one.
func (s Section) Next() (Section, bool) {
	i := s.Index()
	if i < 0 || i+1 >= len(sectionOrder) {
		return "", false
	}
	return sectionOrder[i+1], true
}

// Prev returns the preceding section, false on the first one.
func (s Section) Prev() (Section, bool) {
	i := s.Index()
	if i <= 0 {
		return "", false
	}
	return sectionOrder[i-1], true
}

// validated reports whether leaving s requires its fields to be valid.
func (s Section) validated() bool {
	return s != SectionSummary
}
