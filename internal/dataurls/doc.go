// Package dataurls resolves where each upstream resource lives for the static
// export tree and for the Kitsu-backed API, and how thumbnails and avatars map
// to displayable URLs.
package dataurls
