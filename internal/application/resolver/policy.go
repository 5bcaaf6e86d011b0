package resolver

import (
	"strings"

	"github.com/go-listing-notify/internal/domain"
)

// Policy decides whether a directory entry should be alerted about a listing.
type Policy interface {
	Allow(listing domain.ListingEvent, r domain.Recipient) bool
}

// PolicyFunc adapts a plain function to Policy.
type PolicyFunc func(listing domain.ListingEvent, r domain.Recipient) bool

func (f PolicyFunc) Allow(listing domain.ListingEvent, r domain.Recipient) bool { return f(listing, r) }

// ActiveRecipients admits every enabled recipient, with or without a device.
// Tokenless recipients still get a stored notification.
var ActiveRecipients Policy = PolicyFunc(func(_ domain.ListingEvent, r domain.Recipient) bool {
	return r.Active()
})

// WithDeviceToken admits recipients that have at least one enabled push token.
var WithDeviceToken Policy = PolicyFunc(func(_ domain.ListingEvent, r domain.Recipient) bool {
	return r.HasToken()
})

// SameRegion admits recipients in the listing's region. Listings without a
// region match everyone.
var SameRegion Policy = PolicyFunc(func(l domain.ListingEvent, r domain.Recipient) bool {
	if l.Region == "" {
		return true
	}
	return strings.EqualFold(l.Region, r.Region)
})

// All combines policies; a recipient must satisfy every one of them.
func All(policies ...Policy) Policy {
	return PolicyFunc(func(l domain.ListingEvent, r domain.Recipient) bool {
		for _, p := range policies {
			if !p.Allow(l, r) {
				return false
			}
		}
		return true
	})
}
