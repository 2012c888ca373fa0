package application

// AdminPolicy decides admin status from a static e-mail allow-list that is
// fixed at construction.
type AdminPolicy struct {
	emails map[string]struct{}
}

// NewAdminPolicy copies emails into an immutable set. Entries are compared
// exactly as given; callers trim them when parsing configuration.
func NewAdminPolicy(emails []string) *AdminPolicy {
	set := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		if email == "" {
			continue
		}
		set[email] = struct{}{}
	}
	return &AdminPolicy{emails: set}
}

// IsAdmin reports exact membership of email in the allow-list.
func (p *AdminPolicy) IsAdmin(email string) bool {
	if p == nil || email == "" {
		return false
	}
	_, ok := p.emails[email]
	return ok
}

// Size returns the number of allow-listed addresses.
func (p *AdminPolicy) Size() int {
	if p == nil {
		return 0
	}
	return len(p.emails)
}
