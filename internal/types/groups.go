package types

import "fmt"

// Group is a call-routing category KPIs are computed for.
type Group string

const (
	GroupSS  Group = "SS"
	GroupTVS Group = "TVS"
	GroupKMN Group = "KMN"
	GroupHHD Group = "HHD"
)

// Groups in report order.
var Groups = []Group{GroupSS, GroupTVS, GroupKMN, GroupHHD}

// support category labels as they appear in the case management exports
var categoryByGroup = map[Group]string{
	GroupSS:  "SS",
	GroupTVS: "TVS",
	GroupKMN: "顧問先",
	GroupHHD: "HHD",
}

func (g Group) Valid() bool {
	_, ok := categoryByGroup[g]
	return ok
}

// Category returns the support category label used for g in spreadsheet exports.
func (g Group) Category() string {
	return categoryByGroup[g]
}

// GroupForCategory maps a spreadsheet support category back to its group.
func GroupForCategory(label string) (Group, bool) {
	for g, c := range categoryByGroup {
		if c == label {
			return g, true
		}
	}
	return "", false
}

// Bucket classifies how long a callback took to resolve.
type Bucket string

const (
	Bucket0To20  Bucket = "0_20"
	Bucket20To30 Bucket = "20_30"
	Bucket30To40 Bucket = "30_40"
	Bucket40To60 Bucket = "40_60"
	BucketOver60 Bucket = "60over"
)

var Buckets = []Bucket{Bucket0To20, Bucket20To30, Bucket30To40, Bucket40To60, BucketOver60}

// Threshold is a wait-time limit in minutes. Pending lists hold cases waiting at
// least that long; cumulative callback counts hold cases closed within it.
type Threshold int

const (
	Threshold20 Threshold = 20
	Threshold30 Threshold = 30
	Threshold40 Threshold = 40
	Threshold60 Threshold = 60
)

var Thresholds = []Threshold{Threshold20, Threshold30, Threshold40, Threshold60}

func (t Threshold) Valid() bool {
	switch t {
	case Threshold20, Threshold30, Threshold40, Threshold60:
		return true
	}
	return false
}

// ClosingBucket is the bucket whose upper edge is t.
func (t Threshold) ClosingBucket() Bucket {
	switch t {
	case Threshold20:
		return Bucket0To20
	case Threshold30:
		return Bucket20To30
	case Threshold40:
		return Bucket30To40
	case Threshold60:
		return Bucket40To60
	}
	return ""
}

func (t Threshold) String() string {
	return fmt.Sprintf("%dover", int(t))
}
