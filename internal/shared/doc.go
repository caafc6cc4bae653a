// Package shared declares the collaborator interfaces used across coursesync
// services: the git executor, the clock and the filesystem.
package shared
