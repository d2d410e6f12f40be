package migrate

import (
	"log/slog"
	"strings"
)

// Kind identifies a migratable entity type.
//
// Declaration order is dependency order: import and validate always process
// kinds in this sequence, so that entities referenced by later kinds (for
// example audiences referenced by monitor notifications) exist first.
type Kind int

const (
	KindBlocklists Kind = iota
	KindDomains
	KindTags
	KindExclusionWindows
	KindDataProducts
	KindAudiences
	KindMonitors
)

// String returns the snake_case plural name used in CLI arguments, log
// lines, and the manifest.
func (k Kind) String() string {
	switch k {
	case KindBlocklists:
		return "blocklists"
	case KindDomains:
		return "domains"
	case KindTags:
		return "tags"
	case KindExclusionWindows:
		return "exclusion_windows"
	case KindDataProducts:
		return "data_products"
	case KindAudiences:
		return "audiences"
	case KindMonitors:
		return "monitors"
	default:
		return "unknown"
	}
}

// Filename returns the conventional file name for the kind inside a
// migration directory. Migrators fall back to it whenever the manifest is
// missing or unreadable.
func (k Kind) Filename() string {
	if k == KindMonitors {
		return "monitors.yaml"
	}
	return k.String() + ".csv"
}

// AllKinds returns every kind in dependency order.
func AllKinds() []Kind {
	return []Kind{
		KindBlocklists,
		KindDomains,
		KindTags,
		KindExclusionWindows,
		KindDataProducts,
		KindAudiences,
		KindMonitors,
	}
}

// ParseKinds resolves a comma-separated entity list ("tags,monitors") into
// kinds in dependency order, regardless of the order given. An empty string
// or "all" selects every kind. Unknown names are dropped with a warning,
// never an error, so a request naming a future entity type still runs.
func ParseKinds(s string, logger *slog.Logger) []Kind {
	if logger == nil {
		logger = slog.Default()
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return AllKinds()
	}

	byName := make(map[string]Kind, len(AllKinds()))
	for _, k := range AllKinds() {
		byName[k.String()] = k
	}

	requested := make(map[Kind]bool)
	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		k, ok := byName[name]
		if !ok {
			logger.Warn("unknown entity type, skipping", "entity", name)
			continue
		}
		requested[k] = true
	}

	var kinds []Kind
	for _, k := range AllKinds() {
		if requested[k] {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
