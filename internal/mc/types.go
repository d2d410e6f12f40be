package mc

// BlocklistEntry is one collection-blocklist rule.
type BlocklistEntry struct {
	ResourceID       string `json:"resourceId"`
	TargetObjectType string `json:"targetObjectType"`
	MatchType        string `json:"matchType"`
	Dataset          string `json:"dataset"`
	Project          string `json:"project"`
	Effect           string `json:"effect"`
}

// Domain groups assets under a named area of ownership.
type Domain struct {
	UUID        string   `json:"uuid"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Assignments []string `json:"assignments"` // asset MCONs
}

// TagPair is one object-property (tag) on an asset.
type TagPair struct {
	WarehouseID   string `json:"warehouseId"`
	WarehouseName string `json:"warehouseName"`
	FullTableID   string `json:"fullTableId"`
	AssetType     string `json:"assetType"`
	TagKey        string `json:"tagKey"`
	TagValue      string `json:"tagValue"`
}

// ExclusionWindow is one data-maintenance entry during which monitoring is
// suppressed.
type ExclusionWindow struct {
	ID           string `json:"id"`
	ResourceUUID string `json:"resourceUuid"`
	Scope        string `json:"scope"`
	Database     string `json:"database"`
	Dataset      string `json:"dataset"`
	FullTableID  string `json:"fullTableId"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Reason       string `json:"reason"`
	ReasonType   string `json:"reasonType"`
}

// DataProduct groups assets into a consumer-facing product.
type DataProduct struct {
	UUID        string   `json:"uuid"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Assets      []string `json:"assets"` // asset MCONs
}

// Audience is a named set of notification recipients.
type Audience struct {
	Name                  string   `json:"name"`
	NotificationType      string   `json:"notificationType"`
	Recipients            []string `json:"recipients"`
	RecipientDisplayNames []string `json:"recipientDisplayNames"`
	IntegrationID         string   `json:"integrationId"`
}

// Warehouse is a connected data warehouse resource.
type Warehouse struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// Monitor is one monitor definition as returned by the API. Config carries
// the type-specific fields verbatim so exports round-trip settings the
// migrator does not interpret.
type Monitor struct {
	UUID      string         `json:"uuid"`
	Name      string         `json:"name"`
	Type      string         `json:"monitorType"` // metric, custom_sql, table
	Namespace string         `json:"namespace"`
	Warehouse string         `json:"resourceName"`
	Config    map[string]any `json:"config"`
}

// MonitorResolution is one planned or applied change from a monitor config
// apply.
type MonitorResolution struct {
	Type        string `json:"type"` // CREATE, UPDATE, DELETE, NO_OP
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ApplyResult summarizes a monitor config apply (dry-run or committed).
type ApplyResult struct {
	Resolutions    []MonitorResolution `json:"resourceModifications"`
	ChangesApplied bool                `json:"changesApplied"`
}
