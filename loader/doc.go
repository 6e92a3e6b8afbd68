// Package loader locates and parses questionnaires.
//
// A FormLoader resolves questionnaires by canonical URL from a set of
// search directories, probing candidate files cheaply before decoding
// them, and keeps resolved forms in an LRU cache. It implements
// service.FormSource, so it can be attached to the engine directly.
package loader
