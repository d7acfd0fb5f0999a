package errors

var (
	// ErrPageNotFound signals that the requested page is absent from the document.
	ErrPageNotFound = NotFoundError("page not found").Build()

	// ErrAuthOrNotFound signals a rejected token or a document that does not exist.
	ErrAuthOrNotFound = AuthError("unauthorized or file doesn't exist").Build()

	// ErrTransientService signals an unexpected response from the remote service.
	ErrTransientService = ServiceError("something went wrong, try again later").Build()

	// ErrAssetDownload signals that a single asset could not be downloaded.
	ErrAssetDownload = NetworkError("asset download failed").Warning().Build()

	// ErrNormalizationSkip signals that one icon's markup could not be optimized.
	ErrNormalizationSkip = MarkupError("markup could not be optimized").Warning().Build()

	// ErrNoCandidates signals that the selection matched no icons.
	ErrNoCandidates = ValidationError("no icons matched the selection").Build()
)
