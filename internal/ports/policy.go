package ports

// RewritePolicyPort maps upstream git remotes onto mirror remotes.
type RewritePolicyPort interface {
	Rewrite(url string) string
}
