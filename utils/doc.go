// Package utils holds the logrus-based logger setup and environment helpers.
package utils
