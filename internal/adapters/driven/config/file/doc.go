// Package file provides the TOML configuration store and the typed Settings
// read from it.
//
// The file lives at ~/.archie/config.toml unless another directory is given:
//
//	repositories = ["public", "private"]
//
//	[index]
//	backend = "sqlite"      # memory | sqlite | solr
//
//	[storage]
//	backend = "local"       # local | memory | minio | s3
//	root = "/srv/archive"
//
//	[errors]
//	validation = "skip"     # abort (default) | skip; storage always aborts
package file
