// Package organization manages the farms and sites that own devices.
//
// An organization is the billing and placement unit: devices belong to
// exactly one organization and inherit its address on adoption.
package organization
