package utils

// UtilsImpl은 interfaces.Utils 구현체입니다
type UtilsImpl struct {
	*Logger
	*Path
	*Generate
}

// NewUtils는 새로운 UtilsImpl 인스턴스를 생성합니다
func NewUtils(internalPaths map[string]bool) *UtilsImpl {
	return &UtilsImpl{
		Logger:   current(),
		Path:     NewPath(internalPaths),
		Generate: NewGenerate(),
	}
}
