package types

import "strings"

// GroupKeys bundles every raw data key read for one group.
type GroupKeys struct {
	Template  string
	Voicemail string
	Direct    string
	Excluded  string
	Callback  map[Bucket]string
	Waiting   map[Threshold]string
}

var groupKeys = buildGroupKeys()

func buildGroupKeys() map[Group]GroupKeys {
	out := make(map[Group]GroupKeys, len(Groups))
	for _, g := range Groups {
		suffix := strings.ToLower(string(g))
		k := GroupKeys{
			Template:  TemplateKey(g),
			Voicemail: "ivr_" + suffix,
			Direct:    "direct_" + suffix,
			Excluded:  "cb_not_include_" + suffix,
			Callback:  make(map[Bucket]string, len(Buckets)),
			Waiting:   make(map[Threshold]string, len(Thresholds)),
		}
		for _, b := range Buckets {
			k.Callback[b] = "cb_" + string(b) + "_" + suffix
		}
		for _, t := range Thresholds {
			k.Waiting[t] = "wfc_over" + strings.TrimSuffix(t.String(), "over") + "_" + suffix
		}
		out[g] = k
	}
	return out
}

// KeysFor resolves the key bundle for g. ok is false for unknown groups.
func KeysFor(g Group) (GroupKeys, bool) {
	k, ok := groupKeys[g]
	return k, ok
}

// TemplateKey is the reporting-portal template name for g.
func TemplateKey(g Group) string {
	return "TEMPLATE_" + string(g)
}
