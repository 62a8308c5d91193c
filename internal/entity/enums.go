package entity

type City string

const (
	CityChandigarh City = "Chandigarh"
	CityMohali     City = "Mohali"
	CityZirakpur   City = "Zirakpur"
	CityPanchkula  City = "Panchkula"
	CityOther      City = "Other"
)

var Cities = []City{CityChandigarh, CityMohali, CityZirakpur, CityPanchkula, CityOther}

type PropertyType string

const (
	PropertyApartment PropertyType = "Apartment"
	PropertyVilla     PropertyType = "Villa"
	PropertyPlot      PropertyType = "Plot"
	PropertyOffice    PropertyType = "Office"
	PropertyRetail    PropertyType = "Retail"
)

var PropertyTypes = []PropertyType{PropertyApartment, PropertyVilla, PropertyPlot, PropertyOffice, PropertyRetail}

// RequiresBHK reports whether a unit size must be given for this property type.
func (p PropertyType) RequiresBHK() bool {
	return p == PropertyApartment || p == PropertyVilla
}

type BHK string

const (
	BHKStudio BHK = "Studio"
	BHKOne    BHK = "One"
	BHKTwo    BHK = "Two"
	BHKThree  BHK = "Three"
	BHKFour   BHK = "Four"
)

var BHKs = []BHK{BHKStudio, BHKOne, BHKTwo, BHKThree, BHKFour}

type Purpose string

const (
	PurposeBuy  Purpose = "Buy"
	PurposeRent Purpose = "Rent"
)

var Purposes = []Purpose{PurposeBuy, PurposeRent}

type Timeline string

const (
	TimelineZeroToThree Timeline = "ZeroToThreeMonths"
	TimelineThreeToSix  Timeline = "ThreeToSixMonths"
	TimelineMoreThanSix Timeline = "GreaterThanSixMonths"
	TimelineExploring   Timeline = "Exploring"
)

var Timelines = []Timeline{TimelineZeroToThree, TimelineThreeToSix, TimelineMoreThanSix, TimelineExploring}

var timelineLabels = map[Timeline]string{
	TimelineZeroToThree: "0-3m",
	TimelineThreeToSix:  "3-6m",
	TimelineMoreThanSix: ">6m",
	TimelineExploring:   "Exploring",
}

// ShortLabel is the compact form used in CSV files (e.g. "0-3m").
func (t Timeline) ShortLabel() string {
	if label, ok := timelineLabels[t]; ok {
		return label
	}
	return string(t)
}

// TimelineFromLabel maps a short label back to its enumeration value.
func TimelineFromLabel(label string) (Timeline, bool) {
	for t, l := range timelineLabels {
		if l == label {
			return t, true
		}
	}
	return "", false
}

type Source string

const (
	SourceWebsite  Source = "Website"
	SourceReferral Source = "Referral"
	SourceWalkIn   Source = "WalkIn"
	SourceCall     Source = "Call"
	SourceOther    Source = "Other"
)

var Sources = []Source{SourceWebsite, SourceReferral, SourceWalkIn, SourceCall, SourceOther}

type Status string

const (
	StatusNew         Status = "New"
	StatusQualified   Status = "Qualified"
	StatusContacted   Status = "Contacted"
	StatusVisited     Status = "Visited"
	StatusNegotiation Status = "Negotiation"
	StatusConverted   Status = "Converted"
	StatusDropped     Status = "Dropped"
)

var Statuses = []Status{
	StatusNew,
	StatusQualified,
	StatusContacted,
	StatusVisited,
	StatusNegotiation,
	StatusConverted,
	StatusDropped,
}

// Values returns the string form of an enumeration list.
func Values[T ~string](list []T) []string {
	out := make([]string, len(list))
	for i, v := range list {
		out[i] = string(v)
	}
	return out
}
