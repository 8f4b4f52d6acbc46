package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionManager_Defaults(t *testing.T) {
	// Стандартный набор регионов и детерминированный порядок имён
	rm := NewRegionManager()

	assert.Equal(t, []string{RegionOverworld, RegionNether, RegionEnd}, rm.Names(),
		"Имена должны перечисляться в порядке регистрации")

	ow, err := rm.Get(RegionOverworld)
	require.NoError(t, err)
	assert.Equal(t, -64, ow.Bounds().MinY, "Overworld должен начинаться с -64")
	assert.Equal(t, 320, ow.Bounds().MaxY(), "Overworld должен заканчиваться на 320")

	nether, err := rm.Get(RegionNether)
	require.NoError(t, err)
	assert.Equal(t, 256, nether.Bounds().MaxY())
}

func TestRegionManager_GetUnknown(t *testing.T) {
	rm := NewRegionManager()

	_, err := rm.Get("aether")
	assert.Error(t, err, "Незарегистрированный регион должен давать ошибку")
}

func TestRegionManager_Register(t *testing.T) {
	// Регистрация кастомного региона и защита от дублей
	rm := NewEmptyRegionManager()
	assert.Empty(t, rm.Names(), "Пустой менеджер не должен содержать регионов")

	r, err := rm.Register("mining", Bounds{MinY: 0, Height: 128})
	require.NoError(t, err)
	assert.Equal(t, "mining", r.Name())

	_, err = rm.Register("mining", Bounds{MinY: 0, Height: 64})
	assert.Error(t, err, "Повторная регистрация имени должна отклоняться")

	_, err = rm.Register("", Bounds{MinY: 0, Height: 64})
	assert.Error(t, err, "Пустое имя должно отклоняться")
}
