// Package manifest loads declarative schema node trees from files.
//
// A manifest lists top-level objects, each converged in order. Objects nest
// their prerequisites under "requires":
//
//	objects:
//	  - name: users_email_idx
//	    index: users_email_idx
//	    meet:
//	      - CREATE UNIQUE INDEX users_email_idx ON users(email)
//	    requires:
//	      - name: users
//	        table: users
//	        meet:
//	          - CREATE TABLE users(id INTEGER PRIMARY KEY, email TEXT)
//
// YAML (.yaml, .yml), TOML (.toml) and CUE (.cue) files are supported. The
// field names are the same in every format.
package manifest
