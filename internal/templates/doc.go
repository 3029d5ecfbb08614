// Package templates holds the starter projects used by plhub create.
package templates
