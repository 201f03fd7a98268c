package domain

// registryCache is the instance-local cache of EPP-derived fields. Each field
// costs a registry round trip to fetch, so values are loaded on first access
// and kept for the aggregate's lifetime. Mutating calls invalidate the fields
// they change; Refresh drops everything. The cache is never shared across
// requests.
type registryCache struct {
	fields map[string]any
}

const (
	cacheFieldExpiration  = "expiration_date"
	cacheFieldHosts       = "hosts"
	cacheFieldContacts    = "contacts"
	cacheFieldDsData      = "ds_data"
	cacheFieldStatuses    = "statuses"
	cacheFieldSecurityCon = "security_contact"
)

func newRegistryCache() *registryCache {
	return &registryCache{fields: make(map[string]any)}
}

func (c *registryCache) get(field string) (any, bool) {
	v, ok := c.fields[field]
	return v, ok
}

func (c *registryCache) set(field string, v any) {
	c.fields[field] = v
}

func (c *registryCache) invalidate(fields ...string) {
	for _, f := range fields {
		delete(c.fields, f)
	}
}

func (c *registryCache) clear() {
	c.fields = make(map[string]any)
}
