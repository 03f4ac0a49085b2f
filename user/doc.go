// Package user provisions local user accounts from verified identity
// claims. Provisioning is idempotent: a returning identity resolves to
// the same account, a new one gets an account created on first login.
package user
