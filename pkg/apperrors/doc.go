// Package apperrors defines the failure kinds shared by the Readify services.
//
// Every service operation returns (value, error). A non-nil error is either an
// *Error carrying a Kind and a user-facing Message, or an infrastructure error
// that KindOf classifies as KindCanceled (context errors) or KindInternal.
//
//	book, err := svc.GetBookByID(ctx, id)
//	if apperrors.IsKind(err, apperrors.KindNotFound) {
//		httputil.WriteBadRequest(w, apperrors.MessageOf(err))
//	}
//
// The HTTP layer maps kinds to status codes in pkg/httputil.
package apperrors
