// Package packager names, stores and describes rendered documents.
//
// A Packager turns a render.Output into a records.GeneratedArtifact: it
// derives the file name, writes the bytes under {companyID}/{fileName}
// through a Storage backend and records size and checksum. LocalStorage
// writes to disk; S3Storage targets an S3 bucket.
package packager
