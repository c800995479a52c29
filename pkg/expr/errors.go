package expr

import "errors"

// Sentinel errors returned by the compiler. All of them describe a tree
// built outside the construction rules and abort compilation.
var (
	// ErrMalformedExpression reports a child count that violates the arity
	// contract of the node's operation, or an unrecognized node type.
	ErrMalformedExpression = errors.New("malformed expression")
	// ErrInvalidShape reports a result shape outside the supported set.
	ErrInvalidShape = errors.New("invalid shape")
	// ErrInvalidSubchannelCount reports a swizzle selector count other than
	// 1, 2, 3, 4, 6 or 16.
	ErrInvalidSubchannelCount = errors.New("invalid subchannel count")
	// ErrInvalidSubchannel reports a swizzle selector the source shape does not have.
	ErrInvalidSubchannel = errors.New("invalid subchannel")
	// ErrInternalConsistency reports a reference with neither a name nor an object.
	ErrInternalConsistency = errors.New("internal consistency error")
	// ErrUnsupportedParameterType reports a constant the binder cannot dispatch.
	ErrUnsupportedParameterType = errors.New("unsupported parameter type")
	// ErrUnknownProperty reports a property missing from a reference kind's catalog.
	ErrUnknownProperty = errors.New("unknown property")
	// ErrUnknownReference reports a reference name that no node in the tree carries.
	ErrUnknownReference = errors.New("unknown reference")
	// ErrUnknownReferenceKind reports a reference kind name that does not parse.
	ErrUnknownReferenceKind = errors.New("unknown reference kind")
	// ErrUnknownNodeType reports an operation name that does not parse.
	ErrUnknownNodeType = errors.New("unknown node type")
	// ErrDisposed reports use of a node after Dispose.
	ErrDisposed = errors.New("node disposed")
)
