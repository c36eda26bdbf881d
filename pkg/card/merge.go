// merge.go - Merge request overrides (e.g. CLI flags) onto a base request.
package card

// MergeRequest overlays the non-empty fields of over onto base.
func MergeRequest(base, over RenderRequest) RenderRequest {
	result := base
	if over.Text != "" {
		result.Text = over.Text
	}
	if over.Font != "" {
		result.Font = over.Font
	}
	if over.Image != "" {
		result.Image = over.Image
	}
	return result
}
