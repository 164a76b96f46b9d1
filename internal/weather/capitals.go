package weather

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultCapitals maps regions to the city used when only the region is named.
var defaultCapitals = map[string]string{
	"Maharashtra":    "Mumbai",
	"Rajasthan":      "Jaipur",
	"Uttar Pradesh":  "Lucknow",
	"West Bengal":    "Kolkata",
	"Karnataka":      "Bengaluru",
	"Tamil Nadu":     "Chennai",
	"Gujarat":        "Gandhinagar",
	"Kerala":         "Thiruvananthapuram",
	"Punjab":         "Chandigarh",
	"Haryana":        "Chandigarh",
	"Delhi":          "New Delhi",
	"Goa":            "Panaji",
	"Madhya Pradesh": "Bhopal",
	"Bihar":          "Patna",
	"Odisha":         "Bhubaneswar",
	"Telangana":      "Hyderabad",
	"Andhra Pradesh": "Amaravati",
	"Assam":          "Dispur",
	"Jharkhand":      "Ranchi",
	"Chhattisgarh":   "Raipur",
}

type capital struct {
	region string
	city   string
}

// Capitals is a case-insensitive region to principal city table.
type Capitals struct {
	byRegion map[string]capital
}

// DefaultCapitals returns the built-in table.
func DefaultCapitals() *Capitals {
	c := &Capitals{byRegion: make(map[string]capital, len(defaultCapitals))}
	c.merge(defaultCapitals)
	return c
}

// LoadCapitals reads a YAML mapping of region to city and layers it over the
// built-in table. An empty path returns the defaults.
func LoadCapitals(path string) (*Capitals, error) {
	c := DefaultCapitals()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read capitals file: %w", err)
	}
	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse capitals file: %w", err)
	}
	c.merge(overrides)
	return c, nil
}

func (c *Capitals) merge(m map[string]string) {
	for region, city := range m {
		region, city = strings.TrimSpace(region), strings.TrimSpace(city)
		if region == "" || city == "" {
			continue
		}
		c.byRegion[strings.ToLower(region)] = capital{region: region, city: city}
	}
}

// Lookup returns the canonical region name and its capital.
func (c *Capitals) Lookup(region string) (name, city string, ok bool) {
	entry, ok := c.byRegion[strings.ToLower(strings.TrimSpace(region))]
	if !ok {
		return "", "", false
	}
	return entry.region, entry.city, true
}

// Len reports the number of regions in the table.
func (c *Capitals) Len() int {
	return len(c.byRegion)
}
