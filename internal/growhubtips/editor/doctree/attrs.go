package doctree

// AttrString безопасно извлекает строковый атрибут из map.
func AttrString(attrs map[string]interface{}, key string) string {
	if attrs == nil {
		return ""
	}
	val, ok := attrs[key]
	if !ok {
		return ""
	}
	str, ok := val.(string)
	if !ok {
		return ""
	}
	return str
}

// AttrInt безопасно извлекает целочисленный атрибут из map.
func AttrInt(attrs map[string]interface{}, key string) int {
	if attrs == nil {
		return 0
	}
	val, ok := attrs[key]
	if !ok {
		return 0
	}

	// Может быть float64 из JSON
	if f, ok := val.(float64); ok {
		return int(f)
	}

	// Может быть int
	if i, ok := val.(int); ok {
		return i
	}

	return 0
}

// AttrFloat безопасно извлекает числовой атрибут из map.
func AttrFloat(attrs map[string]interface{}, key string) float64 {
	if attrs == nil {
		return 0
	}
	val, ok := attrs[key]
	if !ok {
		return 0
	}

	if f, ok := val.(float64); ok {
		return f
	}

	if i, ok := val.(int); ok {
		return float64(i)
	}

	return 0
}

// AttrBool безопасно извлекает булевый атрибут из map.
func AttrBool(attrs map[string]interface{}, key string) bool {
	if attrs == nil {
		return false
	}
	val, ok := attrs[key]
	if !ok {
		return false
	}
	b, ok := val.(bool)
	if !ok {
		return false
	}
	return b
}
