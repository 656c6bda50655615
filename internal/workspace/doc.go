// Package workspace owns the directories a build writes to.
//
// Reset wipes and recreates the output tree at the start of every build; the
// tree is never updated incrementally. Manager provides an ephemeral scratch
// directory (e.g. sitebuilder-20251214-122336-*) used while unpacking the
// stylesheet archive, removed again by Cleanup.
package workspace
