// Package config provides centralized configuration management for roicli.
// It loads configuration from several sources, validates it, and exposes a
// typed struct to the commands.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern ROI_<SECTION>_<FIELD>:
//
//	ROI_LOGGING_LEVEL=debug
//	ROI_TRANSFORM_SHIFTS=m2=-1,m1=0,p1=1
//	ROI_TRANSFORM_NOON_CORRECTION=false
//	ROI_CV_FOLDS=5
//	ROI_TELEMETRY_TRACING=true
//
// # Configuration File
//
//	transform:
//	  id_level: original_id
//	  shifts: "m2=-1,m1=0,p1=1"
//	  day_of_year: true
//	selection:
//	  threshold: 0.9
//
// Unknown keys in the file are rejected.
package config
