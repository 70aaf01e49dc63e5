// Package language normalizes language hints for the recognition engine
// and renders display names for summaries. The engine wants ISO 639-1
// codes; users type anything from "zh" to "Chinese".
package language
