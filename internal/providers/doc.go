// Package providers groups the adapters to the operating system: the
// filesystem (scanning, mutations, trash, default application) and the
// clipboard.
package providers
