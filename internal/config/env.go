package config

import "strings"

// rest.base_url => LOWCARBON_REST_BASE_URL
var envKeyReplacer = strings.NewReplacer(".", "_")
