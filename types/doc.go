// Package types holds query filter and pagination types shared by the
// repository and service layers.
package types
