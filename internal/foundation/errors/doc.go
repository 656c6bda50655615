// Package errors provides the classified error primitives used across sitebuilder.
//
// Every failure that can reach the operator carries a category (config, network,
// filesystem, image, template, ...) and a severity. Fatal errors stop the build;
// warnings are recorded in the build report and the pipeline continues.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryNetwork, "archive download failed").
//		Fatal().
//		WithContext("url", archiveURL).
//		Build()
package errors
