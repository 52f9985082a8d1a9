// Package taf parses tables in the Temporal Attribute Format, where every
// column name carries a feature name and a Julian day suffix.
package taf
