// Package io reads and writes family snapshots and outline rows.
//
// # Overview
//
// A snapshot is the serialized form of the families a store serves: every
// family with its memberships, each membership carrying a full member record
// with parent, child and spouse stubs. Snapshots are used by the file store,
// by tests and fixtures, and to move data between stores.
//
// # Formats
//
// Snapshots are JSON or TOML; [FormatFromPath] picks one from the file
// extension. A minimal JSON snapshot:
//
//	{
//	  "families": [{
//	    "id": "smith",
//	    "name": "Smith",
//	    "memberships": [
//	      {"role": "ADMIN", "member": {"id": "john", "name": "John", "gender": "MALE",
//	        "spouses": [{"id": "jane", "name": "Jane"}]}},
//	      {"member": {"id": "jane", "name": "Jane", "gender": "FEMALE"}},
//	      {"member": {"id": "michael", "name": "Michael",
//	        "parents": [{"id": "john"}, {"id": "jane"}]}}
//	    ]
//	  }]
//	}
//
// # Validation
//
// Reading a snapshot normalizes genders, assigns a random id to members that
// have none, and validates the result (required ids, well-formed colors,
// unique family ids). Failures are reported with code INVALID_SNAPSHOT.
//
// # Rows
//
// [WriteRows] and [ReadRows] serialize outline rows in their JSON contract:
//
//	[{"column": 0, "value": "●#1f77b4 John ♂ [Generation 0]",
//	  "memberIds": [{"id": "john", "name": "John", "gender": "MALE",
//	                 "color": "#1f77b4", "parentColors": []}]}]
package io
