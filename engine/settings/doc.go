// Package settings implements typed plugin settings resolved through a
// shared, ownership-aware store.
//
// Every setting belongs to a namespace (its owner). A value is read from the
// active namespace when the setting overrides its owner, and may fall back to
// the common namespace when it inherits. A Registry collects the declarations
// of one process, arranges them in a Category tree for display and exposes the
// Get/Set/Remove facade plugins use at runtime. Migrate imports a legacy flat
// settings file once per installation.
package settings
