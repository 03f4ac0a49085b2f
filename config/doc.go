// Package config defines the OpenID Connect plugin configuration, its
// validation, and the Store abstraction through which hosts supply it.
//
// Validation reports every invalid field in one aggregated error so a
// configuration UI can surface all problems at once.
package config
