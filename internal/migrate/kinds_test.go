package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllKindsDependencyOrder(t *testing.T) {
	want := []Kind{
		KindBlocklists,
		KindDomains,
		KindTags,
		KindExclusionWindows,
		KindDataProducts,
		KindAudiences,
		KindMonitors,
	}
	assert.Equal(t, want, AllKinds())
}

func TestKindFilename(t *testing.T) {
	assert.Equal(t, "blocklists.csv", KindBlocklists.Filename())
	assert.Equal(t, "exclusion_windows.csv", KindExclusionWindows.Filename())
	assert.Equal(t, "monitors.yaml", KindMonitors.Filename())
}

func TestParseKindsAll(t *testing.T) {
	assert.Equal(t, AllKinds(), ParseKinds("", nil))
	assert.Equal(t, AllKinds(), ParseKinds("all", nil))
	assert.Equal(t, AllKinds(), ParseKinds("ALL", nil))
}

func TestParseKindsReordersToDependencyOrder(t *testing.T) {
	got := ParseKinds("monitors,tags,domains", nil)
	assert.Equal(t, []Kind{KindDomains, KindTags, KindMonitors}, got)
}

func TestParseKindsDropsUnknownNames(t *testing.T) {
	got := ParseKinds("tags,dashboards,monitors", nil)
	assert.Equal(t, []Kind{KindTags, KindMonitors}, got)
}

func TestParseKindsTrimsAndDeduplicates(t *testing.T) {
	got := ParseKinds(" tags , tags ,, MONITORS ", nil)
	assert.Equal(t, []Kind{KindTags, KindMonitors}, got)
}
