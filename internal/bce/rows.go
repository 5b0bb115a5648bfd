package bce

import "github.com/sells-group/bce-import/internal/fetcher"

// Registry code values.
const (
	metaSnapshotDate     = "SnapshotDate"
	metaExtractTimestamp = "ExtractTimestamp"

	classificationMain = "MAIN"

	addressTypeEstablishment  = "BAET"
	addressTypeRegisteredSeat = "REGO"

	denominationLegal       = "001"
	denominationAbbreviated = "002"
	denominationCommercial  = "003"

	languageFR = "1"
	languageNL = "2"

	contactScopeEstablishment = "EST"
	contactScopeEnterprise    = "ENT"

	contactTypePhone   = "TEL"
	contactTypeEmail   = "EMAIL"
	contactTypeWebsite = "WEB"
)

type metaRow struct {
	Variable string
	Value    string
}

func parseMetaRow(r fetcher.Record) metaRow {
	return metaRow{
		Variable: r.Get("Variable"),
		Value:    r.Get("Value"),
	}
}

type activityRow struct {
	EntityNumber   string
	NaceVersion    string
	NaceCode       string
	Classification string
}

func parseActivityRow(r fetcher.Record) activityRow {
	return activityRow{
		EntityNumber:   r.Get("EntityNumber"),
		NaceVersion:    r.Get("NaceVersion"),
		NaceCode:       r.Get("NaceCode"),
		Classification: r.Get("Classification"),
	}
}

type establishmentRow struct {
	EstablishmentNumber string
	EnterpriseNumber    string
}

func parseEstablishmentRow(r fetcher.Record) establishmentRow {
	return establishmentRow{
		EstablishmentNumber: r.Get("EstablishmentNumber"),
		EnterpriseNumber:    r.Get("EnterpriseNumber"),
	}
}

type addressRow struct {
	EntityNumber    string
	TypeOfAddress   string
	CountryNL       string
	CountryFR       string
	Zipcode         string
	MunicipalityNL  string
	MunicipalityFR  string
	StreetNL        string
	StreetFR        string
	HouseNumber     string
	Box             string
	DateStrikingOff string
}

func parseAddressRow(r fetcher.Record) addressRow {
	return addressRow{
		EntityNumber:    r.Get("EntityNumber"),
		TypeOfAddress:   r.Get("TypeOfAddress"),
		CountryNL:       r.Get("CountryNL"),
		CountryFR:       r.Get("CountryFR"),
		Zipcode:         r.Get("Zipcode"),
		MunicipalityNL:  r.Get("MunicipalityNL"),
		MunicipalityFR:  r.Get("MunicipalityFR"),
		StreetNL:        r.Get("StreetNL"),
		StreetFR:        r.Get("StreetFR"),
		HouseNumber:     r.Get("HouseNumber"),
		Box:             r.Get("Box"),
		DateStrikingOff: r.Get("DateStrikingOff"),
	}
}

// address picks the French value of each bilingual field, falling back to Dutch.
func (r addressRow) address() Address {
	return Address{
		Country:     firstNonEmpty(r.CountryFR, r.CountryNL),
		PostalCode:  r.Zipcode,
		City:        firstNonEmpty(r.MunicipalityFR, r.MunicipalityNL),
		Street:      firstNonEmpty(r.StreetFR, r.StreetNL),
		HouseNumber: r.HouseNumber,
		Box:         r.Box,
	}
}

type denominationRow struct {
	EntityNumber       string
	Language           string
	TypeOfDenomination string
	Denomination       string
}

func parseDenominationRow(r fetcher.Record) denominationRow {
	return denominationRow{
		EntityNumber:       r.Get("EntityNumber"),
		Language:           r.Get("Language"),
		TypeOfDenomination: r.Get("TypeOfDenomination"),
		Denomination:       r.Get("Denomination"),
	}
}

type contactRow struct {
	EntityNumber  string
	EntityContact string
	ContactType   string
	Value         string
}

func parseContactRow(r fetcher.Record) contactRow {
	return contactRow{
		EntityNumber:  r.Get("EntityNumber"),
		EntityContact: r.Get("EntityContact"),
		ContactType:   r.Get("ContactType"),
		Value:         r.Get("Value"),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
