package vercel

// VercelConfig is .vercel/output/config.json of the Build Output API.
type VercelConfig struct {
	Version int     `json:"version"`
	Routes  []Route `json:"routes,omitempty"`
}

type Route struct {
	Src      string            `json:"src,omitempty"`
	Dest     string            `json:"dest,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
	Status   int               `json:"status,omitempty"`
	Handle   string            `json:"handle,omitempty"`
	Continue bool              `json:"continue,omitempty"`
}

func NewVercelConfig() *VercelConfig {
	return &VercelConfig{
		Version: 3,
		Routes:  []Route{},
	}
}

func (c *VercelConfig) AddRoute(route Route) {
	c.Routes = append(c.Routes, route)
}
