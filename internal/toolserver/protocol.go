// Package toolserver exposes the Unified Index to an external agent as a
// small set of structured, newline-delimited JSON operations: find_type,
// get_type_methods, check_type_compatibility, validate_method_call. Unlike
// internal/lsp, requests are independent of any open document — the server
// holds nothing but a warm index snapshot.
package toolserver

import "encoding/json"

// request is one line of inbound newline-delimited JSON.
type request struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// response is one line of outbound newline-delimited JSON, echoing the
// request's id.
type response struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Result interface{}     `json:"result,omitempty"`
	Error  *protoError     `json:"error,omitempty"`
}

// protoError mirrors spec §6's wire contract: -32600 is reserved for
// protocol errors (malformed request, unknown method); positive codes are
// domain errors (a request that parsed fine but named something that
// doesn't exist).
type protoError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	codeProtocolError  = -32600
	codeTypeNotFound   = 1
	codeMemberNotFound = 2
)

func errResponse(id json.RawMessage, code int, message string) response {
	return response{ID: id, Error: &protoError{Code: code, Message: message}}
}

func okResponse(id json.RawMessage, result interface{}) response {
	return response{ID: id, Result: result}
}

// findTypeParams is find_type's request payload.
type findTypeParams struct {
	Name               string `json:"name"`
	LanguagePreference string `json:"language_preference,omitempty"`
}

// findTypeResult is find_type's response payload: exactly one of Entity or
// Suggestions is populated.
type findTypeResult struct {
	Entity      *entitySummary `json:"entity,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
}

type entitySummary struct {
	ID            string   `json:"id"`
	QualifiedName string   `json:"qualified_name"`
	DisplayName   string   `json:"display_name"`
	Type          string   `json:"type"`
	Kind          string   `json:"kind"`
	Parents       []string `json:"parents,omitempty"`
	Constructible bool     `json:"constructible"`
}

type getTypeMethodsParams struct {
	Name             string `json:"name"`
	IncludeInherited bool   `json:"include_inherited,omitempty"`
	Context          string `json:"context,omitempty"`
}

type getTypeMethodsResult struct {
	Methods []methodSummary `json:"methods"`
}

type methodSummary struct {
	Name         string          `json:"name"`
	Params       []paramSummary  `json:"params"`
	ReturnType   string          `json:"return_type,omitempty"`
	Availability []string        `json:"availability"`
	Deprecated   bool            `json:"deprecated,omitempty"`
	Inherited    bool            `json:"inherited"`
	DeclaredOn   string          `json:"declared_on,omitempty"`
}

type paramSummary struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	HasDefault bool   `json:"has_default,omitempty"`
}

type checkTypeCompatibilityParams struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type checkTypeCompatibilityResult struct {
	Compatible bool   `json:"compatible"`
	Rationale  string `json:"rationale,omitempty"`
}

type validateMethodCallParams struct {
	ObjectType string   `json:"object_type"`
	MethodName string   `json:"method_name"`
	Args       []string `json:"args,omitempty"`
	Context    string   `json:"context,omitempty"`
}

type validateMethodCallResult struct {
	Valid             bool            `json:"valid"`
	Reason            string          `json:"reason,omitempty"`
	ClosestSignature  *methodSummary  `json:"closest_signature,omitempty"`
}
