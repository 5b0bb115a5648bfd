package bce

import (
	"time"

	"github.com/sells-group/bce-import/internal/bce/transform"
)

// lookups holds everything the stages learn from the extract. Each fold method
// consumes one row of one file; later stages only read what earlier ones built.
type lookups struct {
	naceVersion string
	allow       map[string]transform.Category

	snapshotDate *time.Time
	extractedAt  *time.Time

	candidates  *Accumulator[EntityNumber, *CandidateActivity]
	links       *Accumulator[EntityNumber, EntityNumber]
	enterprises map[EntityNumber]struct{}

	establishmentAddresses *Accumulator[EntityNumber, Address]
	enterpriseAddresses    *Accumulator[EntityNumber, Address]

	establishmentNames *Accumulator[EntityNumber, RankedValue]
	enterpriseNames    *Accumulator[EntityNumber, RankedValue]

	establishmentContacts *Accumulator[EntityNumber, Contact]
	enterpriseContacts    *Accumulator[EntityNumber, Contact]
}

func newLookups(naceVersion string, allow map[string]transform.Category) *lookups {
	return &lookups{
		naceVersion: naceVersion,
		allow:       allow,

		candidates:  NewAccumulator[EntityNumber](MergeActivity),
		links:       NewAccumulator[EntityNumber](KeepFirst[EntityNumber]),
		enterprises: make(map[EntityNumber]struct{}),

		establishmentAddresses: NewAccumulator[EntityNumber](KeepFirst[Address]),
		enterpriseAddresses:    NewAccumulator[EntityNumber](KeepFirst[Address]),

		establishmentNames: NewAccumulator[EntityNumber](LowestRank),
		enterpriseNames:    NewAccumulator[EntityNumber](LowestRank),

		establishmentContacts: NewAccumulator[EntityNumber](FillContact),
		enterpriseContacts:    NewAccumulator[EntityNumber](FillContact),
	}
}

func (l *lookups) isCandidate(id EntityNumber) bool {
	return l.candidates.Has(id)
}

func (l *lookups) isSelectedEnterprise(id EntityNumber) bool {
	_, ok := l.enterprises[id]
	return ok
}

func (l *lookups) foldMeta(row metaRow) {
	switch row.Variable {
	case metaSnapshotDate:
		l.snapshotDate = parseOptionalDate(row.Value)
	case metaExtractTimestamp:
		l.extractedAt = parseOptionalDate(row.Value)
	}
}

func (l *lookups) foldActivity(row activityRow) {
	id, ok := ParseEntityNumber(row.EntityNumber)
	if !ok || !id.IsEstablishment() {
		return
	}
	if row.NaceVersion != l.naceVersion || row.Classification != classificationMain {
		return
	}
	code := transform.NormalizeNaceCode(row.NaceCode)
	category, ok := l.allow[code]
	if !ok {
		return
	}
	l.candidates.Offer(id, newCandidateActivity(code, category))
}

func (l *lookups) foldEstablishment(row establishmentRow) {
	id, ok := ParseEntityNumber(row.EstablishmentNumber)
	if !ok || !l.isCandidate(id) || l.links.Has(id) {
		return
	}
	enterprise, ok := ParseEntityNumber(row.EnterpriseNumber)
	if !ok {
		return
	}
	l.links.Offer(id, enterprise)
	l.enterprises[enterprise] = struct{}{}
}

func (l *lookups) foldAddress(row addressRow) {
	if row.DateStrikingOff != "" {
		return
	}
	id, ok := ParseEntityNumber(row.EntityNumber)
	if !ok {
		return
	}

	switch {
	case l.isCandidate(id) && row.TypeOfAddress == addressTypeEstablishment:
		l.establishmentAddresses.Offer(id, row.address())
	case l.isSelectedEnterprise(id) && row.TypeOfAddress == addressTypeRegisteredSeat:
		l.enterpriseAddresses.Offer(id, row.address())
	}
}

func (l *lookups) foldDenomination(row denominationRow) {
	if transform.IsMissingName(row.Denomination) {
		return
	}
	id, ok := ParseEntityNumber(row.EntityNumber)
	if !ok {
		return
	}

	if l.isCandidate(id) {
		if rank, ok := EstablishmentNameRank(row.TypeOfDenomination, row.Language); ok {
			l.establishmentNames.Offer(id, RankedValue{Rank: rank, Value: row.Denomination})
		}
		return
	}
	if l.isSelectedEnterprise(id) {
		if rank, ok := EnterpriseNameRank(row.TypeOfDenomination, row.Language); ok {
			l.enterpriseNames.Offer(id, RankedValue{Rank: rank, Value: row.Denomination})
		}
	}
}

func (l *lookups) foldContact(row contactRow) {
	if row.Value == "" {
		return
	}
	contact, ok := contactFor(row.ContactType, row.Value)
	if !ok {
		return
	}
	id, ok := ParseEntityNumber(row.EntityNumber)
	if !ok {
		return
	}

	switch {
	case l.isCandidate(id) && row.EntityContact == contactScopeEstablishment:
		l.establishmentContacts.Offer(id, contact)
	case l.isSelectedEnterprise(id) && row.EntityContact == contactScopeEnterprise:
		l.enterpriseContacts.Offer(id, contact)
	}
}

// EstablishmentNameRank ranks an establishment denomination. Only commercial
// names (type 003) qualify: French 1, Dutch 2, any other language 3.
func EstablishmentNameRank(typeOfDenomination, language string) (int, bool) {
	if typeOfDenomination != denominationCommercial {
		return 0, false
	}
	switch language {
	case languageFR:
		return 1, true
	case languageNL:
		return 2, true
	default:
		return 3, true
	}
}

// EnterpriseNameRank ranks an enterprise denomination: legal name (type 001)
// French 4, Dutch 5, other 6; abbreviation (type 002) 7 in any language.
func EnterpriseNameRank(typeOfDenomination, language string) (int, bool) {
	switch typeOfDenomination {
	case denominationLegal:
		switch language {
		case languageFR:
			return 4, true
		case languageNL:
			return 5, true
		default:
			return 6, true
		}
	case denominationAbbreviated:
		return 7, true
	default:
		return 0, false
	}
}

func contactFor(contactType, value string) (Contact, bool) {
	switch contactType {
	case contactTypePhone:
		return Contact{Phone: value}, true
	case contactTypeEmail:
		return Contact{Email: value}, true
	case contactTypeWebsite:
		return Contact{Website: value}, true
	default:
		return Contact{}, false
	}
}

func parseOptionalDate(raw string) *time.Time {
	t, ok := transform.ParseBelgianDate(raw)
	if !ok {
		return nil
	}
	return &t
}
