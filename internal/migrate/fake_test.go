package migrate

import (
	"context"

	"mcmigrate/internal/mc"
)

// appliedConfig records one ApplyMonitorConfig call.
type appliedConfig struct {
	Namespace string
	YAML      string
	DryRun    bool
}

// fakeAPI is an in-memory API for migrator tests. Reads serve the seeded
// slices; writes are recorded. errOn forces an error for a named method.
type fakeAPI struct {
	blocklists []mc.BlocklistEntry
	domains    []mc.Domain
	tags       []mc.TagPair
	windows    []mc.ExclusionWindow
	products   []mc.DataProduct
	audiences  []mc.Audience
	warehouses []mc.Warehouse
	monitors   []mc.Monitor

	applyResult  mc.ApplyResult
	numDeleted   int
	numConverted int

	errOn map[string]error

	modifiedBlocklists [][]mc.BlocklistEntry
	upsertedDomains    []mc.Domain
	upsertedTags       []mc.TagPair
	upsertedTagDests   []string
	upsertedWindows    []mc.ExclusionWindow
	upsertedProducts   []mc.DataProduct
	createdAudiences   []mc.Audience
	applied            []appliedConfig
}

func (f *fakeAPI) err(method string) error {
	if f.errOn == nil {
		return nil
	}
	return f.errOn[method]
}

func (f *fakeAPI) GetCollectionBlockList(context.Context) ([]mc.BlocklistEntry, error) {
	return f.blocklists, f.err("GetCollectionBlockList")
}

func (f *fakeAPI) ModifyCollectionBlockList(_ context.Context, entries []mc.BlocklistEntry) error {
	if err := f.err("ModifyCollectionBlockList"); err != nil {
		return err
	}
	f.modifiedBlocklists = append(f.modifiedBlocklists, entries)
	return nil
}

func (f *fakeAPI) GetAllDomains(context.Context) ([]mc.Domain, error) {
	return f.domains, f.err("GetAllDomains")
}

func (f *fakeAPI) CreateOrUpdateDomain(_ context.Context, d mc.Domain) error {
	if err := f.err("CreateOrUpdateDomain"); err != nil {
		return err
	}
	f.upsertedDomains = append(f.upsertedDomains, d)
	return nil
}

func (f *fakeAPI) GetObjectProperties(context.Context) ([]mc.TagPair, error) {
	return f.tags, f.err("GetObjectProperties")
}

func (f *fakeAPI) CreateOrUpdateObjectProperty(_ context.Context, warehouseID string, t mc.TagPair) error {
	if err := f.err("CreateOrUpdateObjectProperty"); err != nil {
		return err
	}
	f.upsertedTags = append(f.upsertedTags, t)
	f.upsertedTagDests = append(f.upsertedTagDests, warehouseID)
	return nil
}

func (f *fakeAPI) GetDataMaintenanceEntries(context.Context) ([]mc.ExclusionWindow, error) {
	return f.windows, f.err("GetDataMaintenanceEntries")
}

func (f *fakeAPI) CreateOrUpdateDataMaintenanceEntry(_ context.Context, w mc.ExclusionWindow) error {
	if err := f.err("CreateOrUpdateDataMaintenanceEntry"); err != nil {
		return err
	}
	f.upsertedWindows = append(f.upsertedWindows, w)
	return nil
}

func (f *fakeAPI) GetDataProducts(context.Context) ([]mc.DataProduct, error) {
	return f.products, f.err("GetDataProducts")
}

func (f *fakeAPI) CreateOrUpdateDataProduct(_ context.Context, p mc.DataProduct) error {
	if err := f.err("CreateOrUpdateDataProduct"); err != nil {
		return err
	}
	f.upsertedProducts = append(f.upsertedProducts, p)
	return nil
}

func (f *fakeAPI) GetNotificationAudiences(context.Context) ([]mc.Audience, error) {
	return f.audiences, f.err("GetNotificationAudiences")
}

func (f *fakeAPI) CreateAudience(_ context.Context, a mc.Audience) error {
	if err := f.err("CreateAudience"); err != nil {
		return err
	}
	f.createdAudiences = append(f.createdAudiences, a)
	return nil
}

func (f *fakeAPI) GetWarehouses(context.Context) ([]mc.Warehouse, error) {
	return f.warehouses, f.err("GetWarehouses")
}

func (f *fakeAPI) GetMonitors(context.Context, string) ([]mc.Monitor, error) {
	return f.monitors, f.err("GetMonitors")
}

func (f *fakeAPI) ApplyMonitorConfig(_ context.Context, namespace, configYAML string, dryRun bool) (mc.ApplyResult, error) {
	if err := f.err("ApplyMonitorConfig"); err != nil {
		return mc.ApplyResult{}, err
	}
	f.applied = append(f.applied, appliedConfig{Namespace: namespace, YAML: configYAML, DryRun: dryRun})
	return f.applyResult, nil
}

func (f *fakeAPI) DeleteMonitorConfig(_ context.Context, _ string, _ bool) (int, error) {
	if err := f.err("DeleteMonitorConfig"); err != nil {
		return 0, err
	}
	return f.numDeleted, nil
}

func (f *fakeAPI) ConvertMonitorsToUI(_ context.Context, _ string, _ bool) (int, error) {
	if err := f.err("ConvertMonitorsToUI"); err != nil {
		return 0, err
	}
	return f.numConverted, nil
}

var _ API = (*fakeAPI)(nil)
