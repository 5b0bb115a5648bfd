package bce

import (
	"slices"
	"time"

	"github.com/sells-group/bce-import/internal/bce/transform"
)

// assemble joins the lookups into records, in ascending establishment number
// order. It returns the records and the number of candidates that produced none.
func (l *lookups) assemble(s settings) ([]CommerceRecord, int) {
	ids := l.candidates.Keys()
	slices.Sort(ids)

	records := make([]CommerceRecord, 0, len(ids))
	skipped := 0
	for _, id := range ids {
		rec, ok := l.assembleOne(id, s)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}

func (l *lookups) assembleOne(id EntityNumber, s settings) (CommerceRecord, bool) {
	candidate, ok := l.candidates.Get(id)
	if !ok {
		return CommerceRecord{}, false
	}

	enterprise, ok := l.links.Get(id)
	if !ok {
		return CommerceRecord{}, false
	}

	address, ok := l.establishmentAddresses.Get(id)
	if !ok {
		address, ok = l.enterpriseAddresses.Get(enterprise)
	}
	if !ok {
		return CommerceRecord{}, false
	}

	name, ok := l.establishmentNames.Get(id)
	if !ok {
		name, ok = l.enterpriseNames.Get(enterprise)
	}
	if !ok || name.Value == "" {
		return CommerceRecord{}, false
	}

	displayName, city := name.Value, address.City
	if s.normalizeNames {
		displayName = transform.NormalizeCommerceName(displayName)
		city = transform.NormalizeCityName(city)
	}
	if transform.ContainsExcludedName(displayName, s.excludeNames) {
		return CommerceRecord{}, false
	}

	addressLine := transform.BuildAddressLine(address.Street, address.HouseNumber, address.Box)
	if addressLine == "" || address.PostalCode == "" || city == "" {
		return CommerceRecord{}, false
	}

	country := address.Country
	if country == "" {
		country = DefaultCountry
	}

	matched := make([]string, 0, len(candidate.MatchedCodes))
	for code := range candidate.MatchedCodes {
		matched = append(matched, code)
	}
	slices.Sort(matched)

	estContact, _ := l.establishmentContacts.Get(id)
	entContact, _ := l.enterpriseContacts.Get(enterprise)
	contact := FillContact(estContact, entContact)

	return CommerceRecord{
		EstablishmentNumber: id.String(),
		EnterpriseNumber:    enterprise.String(),
		Name:                displayName,
		Slug:                transform.BuildCommerceSlug(displayName, address.PostalCode, id.String()),
		Category:            candidate.Category,
		NaceVersion:         s.naceVersion,
		NaceCode:            candidate.PrimaryCode,
		MatchedNaceCodes:    matched,
		AddressLine:         addressLine,
		PostalCode:          address.PostalCode,
		City:                city,
		Country:             country,
		Phone:               contact.Phone,
		Email:               contact.Email,
		Website:             contact.Website,
		Source:              s.source,
		SourceSnapshotDate:  cloneTime(l.snapshotDate),
		SourceExtractedAt:   cloneTime(l.extractedAt),
	}, true
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
