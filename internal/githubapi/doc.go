// Package githubapi checks GitHub branch protection before lesson branches are force-pushed.
package githubapi
