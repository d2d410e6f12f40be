package mc

import (
	"context"
)

// GetCollectionBlockList returns every collection-blocklist entry, paging
// until the server returns a short page.
func (c *Client) GetCollectionBlockList(ctx context.Context) ([]BlocklistEntry, error) {
	const q = `query getCollectionBlockList($limit: Int!, $offset: Int!) {
  getCollectionBlockList(limit: $limit, offset: $offset) {
    resourceId targetObjectType matchType dataset project effect
  }
}`
	var all []BlocklistEntry
	for offset := 0; ; offset += Batch {
		var resp struct {
			Entries []BlocklistEntry `json:"getCollectionBlockList"`
		}
		if err := c.do(ctx, q, map[string]any{"limit": Batch, "offset": offset}, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Entries...)
		if len(resp.Entries) < Batch {
			return all, nil
		}
	}
}

// ModifyCollectionBlockList upserts blocklist entries. The server replaces
// matching entries, so re-applying the same rows is a no-op.
func (c *Client) ModifyCollectionBlockList(ctx context.Context, entries []BlocklistEntry) error {
	const q = `mutation modifyCollectionBlockList($entries: [BlockListEntryInput!]!) {
  modifyCollectionBlockList(entries: $entries) { success }
}`
	return c.do(ctx, q, map[string]any{"entries": entries}, nil)
}

// GetAllDomains returns every domain with its asset assignments.
func (c *Client) GetAllDomains(ctx context.Context) ([]Domain, error) {
	const q = `query getAllDomains {
  getAllDomains { uuid name description assignments }
}`
	var resp struct {
		Domains []Domain `json:"getAllDomains"`
	}
	if err := c.do(ctx, q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Domains, nil
}

// CreateOrUpdateDomain upserts a domain by UUID; an empty UUID creates.
func (c *Client) CreateOrUpdateDomain(ctx context.Context, d Domain) error {
	const q = `mutation createOrUpdateDomain($uuid: UUID, $name: String!, $description: String, $assignments: [String!]) {
  createOrUpdateDomain(uuid: $uuid, name: $name, description: $description, assignments: $assignments) {
    domain { uuid }
  }
}`
	vars := map[string]any{
		"name":        d.Name,
		"description": d.Description,
		"assignments": d.Assignments,
	}
	if d.UUID != "" {
		vars["uuid"] = d.UUID
	}
	return c.do(ctx, q, vars, nil)
}

// GetObjectProperties returns every tag (object property) across all
// warehouses.
func (c *Client) GetObjectProperties(ctx context.Context) ([]TagPair, error) {
	const q = `query getObjectProperties($limit: Int!, $offset: Int!) {
  getObjectProperties(limit: $limit, offset: $offset) {
    warehouseId warehouseName fullTableId assetType tagKey tagValue
  }
}`
	var all []TagPair
	for offset := 0; ; offset += Batch {
		var resp struct {
			Tags []TagPair `json:"getObjectProperties"`
		}
		if err := c.do(ctx, q, map[string]any{"limit": Batch, "offset": offset}, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Tags...)
		if len(resp.Tags) < Batch {
			return all, nil
		}
	}
}

// CreateOrUpdateObjectProperty sets one tag on an asset in the given
// warehouse, replacing any existing value for the key.
func (c *Client) CreateOrUpdateObjectProperty(ctx context.Context, warehouseID string, t TagPair) error {
	const q = `mutation createOrUpdateObjectProperty($warehouseId: UUID!, $fullTableId: String!, $assetType: String!, $propertyName: String!, $propertyValue: String!) {
  createOrUpdateObjectProperty(
    warehouseId: $warehouseId, fullTableId: $fullTableId, assetType: $assetType,
    propertyName: $propertyName, propertyValue: $propertyValue
  ) { objectProperty { id } }
}`
	return c.do(ctx, q, map[string]any{
		"warehouseId":   warehouseID,
		"fullTableId":   t.FullTableID,
		"assetType":     t.AssetType,
		"propertyName":  t.TagKey,
		"propertyValue": t.TagValue,
	}, nil)
}

// GetDataMaintenanceEntries returns every exclusion window.
func (c *Client) GetDataMaintenanceEntries(ctx context.Context) ([]ExclusionWindow, error) {
	const q = `query getDataMaintenanceEntries {
  getDataMaintenanceEntries {
    id resourceUuid scope database dataset fullTableId startTime endTime reason reasonType
  }
}`
	var resp struct {
		Entries []ExclusionWindow `json:"getDataMaintenanceEntries"`
	}
	if err := c.do(ctx, q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// CreateOrUpdateDataMaintenanceEntry upserts one exclusion window on the
// given destination resource.
func (c *Client) CreateOrUpdateDataMaintenanceEntry(ctx context.Context, w ExclusionWindow) error {
	const q = `mutation createOrUpdateDataMaintenanceEntry($resourceUuid: UUID!, $scope: String!, $database: String, $dataset: String, $fullTableId: String, $startTime: String!, $endTime: String!, $reason: String, $reasonType: String) {
  createOrUpdateDataMaintenanceEntry(
    resourceUuid: $resourceUuid, scope: $scope, database: $database, dataset: $dataset,
    fullTableId: $fullTableId, startTime: $startTime, endTime: $endTime,
    reason: $reason, reasonType: $reasonType
  ) { entry { id } }
}`
	return c.do(ctx, q, map[string]any{
		"resourceUuid": w.ResourceUUID,
		"scope":        w.Scope,
		"database":     w.Database,
		"dataset":      w.Dataset,
		"fullTableId":  w.FullTableID,
		"startTime":    w.StartTime,
		"endTime":      w.EndTime,
		"reason":       w.Reason,
		"reasonType":   w.ReasonType,
	}, nil)
}

// GetDataProducts returns every data product with its asset list.
func (c *Client) GetDataProducts(ctx context.Context) ([]DataProduct, error) {
	const q = `query getDataProducts {
  getDataProducts { uuid name description assets }
}`
	var resp struct {
		Products []DataProduct `json:"getDataProducts"`
	}
	if err := c.do(ctx, q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// CreateOrUpdateDataProduct upserts a data product by UUID; an empty UUID
// creates.
func (c *Client) CreateOrUpdateDataProduct(ctx context.Context, p DataProduct) error {
	const q = `mutation createOrUpdateDataProduct($uuid: UUID, $name: String!, $description: String, $assets: [String!]) {
  createOrUpdateDataProduct(uuid: $uuid, name: $name, description: $description, assetObjectIds: $assets) {
    dataProduct { uuid }
  }
}`
	vars := map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"assets":      p.Assets,
	}
	if p.UUID != "" {
		vars["uuid"] = p.UUID
	}
	return c.do(ctx, q, vars, nil)
}

// GetNotificationAudiences returns every notification audience.
func (c *Client) GetNotificationAudiences(ctx context.Context) ([]Audience, error) {
	const q = `query getNotificationAudiences {
  getNotificationAudiences {
    name notificationType recipients recipientDisplayNames integrationId
  }
}`
	var resp struct {
		Audiences []Audience `json:"getNotificationAudiences"`
	}
	if err := c.do(ctx, q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Audiences, nil
}

// CreateAudience creates a notification audience. Existence checks are the
// caller's job: audiences are never updated by the migration, only created
// or skipped.
func (c *Client) CreateAudience(ctx context.Context, a Audience) error {
	const q = `mutation createOrUpdateAudience($name: String!, $notificationType: String!, $recipients: [String!], $integrationId: String) {
  createOrUpdateAudience(name: $name, notificationType: $notificationType, recipients: $recipients, integrationId: $integrationId) {
    audience { name }
  }
}`
	return c.do(ctx, q, map[string]any{
		"name":             a.Name,
		"notificationType": a.NotificationType,
		"recipients":       a.Recipients,
		"integrationId":    a.IntegrationID,
	}, nil)
}

// GetWarehouses returns the connected warehouses. Read-only; also used by
// validation to confirm mapped destination names exist.
func (c *Client) GetWarehouses(ctx context.Context) ([]Warehouse, error) {
	const q = `query getWarehouses {
  getUser { account { warehouses { uuid name } } }
}`
	var resp struct {
		GetUser struct {
			Account struct {
				Warehouses []Warehouse `json:"warehouses"`
			} `json:"account"`
		} `json:"getUser"`
	}
	if err := c.do(ctx, q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.GetUser.Account.Warehouses, nil
}

// GetMonitors returns monitors, optionally filtered to one namespace. An
// empty namespace selects UI-managed monitors, which is what an export
// wants.
func (c *Client) GetMonitors(ctx context.Context, namespace string) ([]Monitor, error) {
	const q = `query getMonitors($limit: Int!, $offset: Int!, $namespaces: [String!]) {
  getMonitors(limit: $limit, offset: $offset, namespaces: $namespaces) {
    uuid name monitorType namespace resourceName config
  }
}`
	vars := map[string]any{"limit": Batch, "offset": 0}
	if namespace != "" {
		vars["namespaces"] = []string{namespace}
	}
	var all []Monitor
	for offset := 0; ; offset += Batch {
		vars["offset"] = offset
		var resp struct {
			Monitors []Monitor `json:"getMonitors"`
		}
		if err := c.do(ctx, q, vars, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Monitors...)
		if len(resp.Monitors) < Batch {
			return all, nil
		}
	}
}

// ApplyMonitorConfig applies a monitors-as-code document to a namespace.
// With dryRun the server resolves the changes without committing them; the
// resolutions are identical either way.
func (c *Client) ApplyMonitorConfig(ctx context.Context, namespace, configYAML string, dryRun bool) (ApplyResult, error) {
	const q = `mutation createOrUpdateMonteCarloConfigTemplate($namespace: String!, $configTemplate: String!, $dryRun: Boolean!) {
  createOrUpdateMonteCarloConfigTemplate(namespace: $namespace, configTemplate: $configTemplate, dryRun: $dryRun) {
    response { resourceModifications { type name description } changesApplied }
  }
}`
	var resp struct {
		Payload struct {
			Response ApplyResult `json:"response"`
		} `json:"createOrUpdateMonteCarloConfigTemplate"`
	}
	err := c.do(ctx, q, map[string]any{
		"namespace":      namespace,
		"configTemplate": configYAML,
		"dryRun":         dryRun,
	}, &resp)
	if err != nil {
		return ApplyResult{}, err
	}
	return resp.Payload.Response, nil
}

// DeleteMonitorConfig deletes every monitor in a namespace. Returns the
// number of monitors deleted (or that would be deleted under dryRun).
func (c *Client) DeleteMonitorConfig(ctx context.Context, namespace string, dryRun bool) (int, error) {
	const q = `mutation deleteMonteCarloConfigTemplate($namespace: String!, $dryRun: Boolean!) {
  deleteMonteCarloConfigTemplate(namespace: $namespace, dryRun: $dryRun) {
    response { numDeleted }
  }
}`
	var resp struct {
		Payload struct {
			Response struct {
				NumDeleted int `json:"numDeleted"`
			} `json:"response"`
		} `json:"deleteMonteCarloConfigTemplate"`
	}
	err := c.do(ctx, q, map[string]any{"namespace": namespace, "dryRun": dryRun}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Payload.Response.NumDeleted, nil
}

// ConvertMonitorsToUI converts every code-managed monitor in a namespace to
// a UI-managed monitor. One-way: converted monitors move to the implicit
// "ui" namespace and are no longer addressable by the given namespace.
func (c *Client) ConvertMonitorsToUI(ctx context.Context, namespace string, dryRun bool) (int, error) {
	const q = `mutation convertMonitorsToUi($namespace: String!, $dryRun: Boolean!) {
  convertMonitorsToUi(namespace: $namespace, dryRun: $dryRun) {
    response { numConverted }
  }
}`
	var resp struct {
		Payload struct {
			Response struct {
				NumConverted int `json:"numConverted"`
			} `json:"response"`
		} `json:"convertMonitorsToUi"`
	}
	err := c.do(ctx, q, map[string]any{"namespace": namespace, "dryRun": dryRun}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Payload.Response.NumConverted, nil
}
