package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.* Lua tables into L.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: The engine global is defined with log and combat
// sub-tables.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetGlobal("engine", engine)

	logTable := L.NewTable()
	L.SetField(engine, "log", logTable)
	L.SetField(logTable, "debug", L.NewFunction(m.luaLog(func(msg string) { m.log.Debug(msg) })))
	L.SetField(logTable, "info", L.NewFunction(m.luaLog(func(msg string) { m.log.Info(msg) })))
	L.SetField(logTable, "warn", L.NewFunction(m.luaLog(func(msg string) { m.log.Warn(msg) })))
	L.SetField(logTable, "error", L.NewFunction(m.luaLog(func(msg string) { m.log.Error(msg) })))

	combatTable := L.NewTable()
	L.SetField(engine, "combat", combatTable)
	L.SetField(combatTable, "apply_status", L.NewFunction(m.luaApplyStatus))
	L.SetField(combatTable, "deal_damage", L.NewFunction(m.luaDealDamage))
	L.SetField(combatTable, "heal", L.NewFunction(m.luaHeal))
	L.SetField(combatTable, "query_combatant", L.NewFunction(m.luaQueryCombatant))
}

func (m *Manager) luaLog(emit func(string)) lua.LGFunction {
	return func(L *lua.LState) int {
		emit(L.CheckString(1))
		return 0
	}
}

// luaApplyStatus: engine.combat.apply_status(target_id, kind, stacks, duration)
func (m *Manager) luaApplyStatus(L *lua.LState) int {
	targetID := L.CheckString(1)
	kind := L.CheckString(2)
	stacks := L.CheckInt(3)
	duration := L.CheckInt(4)
	if m.ApplyStatus == nil {
		L.Push(lua.LFalse)
		return 1
	}
	if err := m.ApplyStatus(targetID, kind, stacks, duration); err != nil {
		m.log.Warn("scripting: apply_status failed", zap.Error(err))
		L.Push(lua.LFalse)
		return 1
	}
	L.Push(lua.LTrue)
	return 1
}

// luaDealDamage: engine.combat.deal_damage(target_id, amount)
func (m *Manager) luaDealDamage(L *lua.LState) int {
	targetID := L.CheckString(1)
	amount := L.CheckInt(2)
	if m.DealDamage == nil {
		L.Push(lua.LFalse)
		return 1
	}
	if err := m.DealDamage(targetID, amount); err != nil {
		m.log.Warn("scripting: deal_damage failed", zap.Error(err))
		L.Push(lua.LFalse)
		return 1
	}
	L.Push(lua.LTrue)
	return 1
}

// luaHeal: engine.combat.heal(target_id, amount)
func (m *Manager) luaHeal(L *lua.LState) int {
	targetID := L.CheckString(1)
	amount := L.CheckInt(2)
	if m.Heal == nil {
		L.Push(lua.LFalse)
		return 1
	}
	if err := m.Heal(targetID, amount); err != nil {
		m.log.Warn("scripting: heal failed", zap.Error(err))
		L.Push(lua.LFalse)
		return 1
	}
	L.Push(lua.LTrue)
	return 1
}

// luaQueryCombatant: engine.combat.query_combatant(id) -> table or nil
func (m *Manager) luaQueryCombatant(L *lua.LState) int {
	id := L.CheckString(1)
	if m.GetCombatant == nil {
		L.Push(lua.LNil)
		return 1
	}
	info := m.GetCombatant(id)
	if info == nil {
		L.Push(lua.LNil)
		return 1
	}
	t := L.NewTable()
	L.SetField(t, "id", lua.LString(info.ID))
	L.SetField(t, "name", lua.LString(info.Name))
	L.SetField(t, "hp", lua.LNumber(info.HP))
	L.SetField(t, "max_hp", lua.LNumber(info.MaxHP))
	L.SetField(t, "enraged", lua.LBool(info.Enraged))
	statuses := L.NewTable()
	for i, s := range info.Statuses {
		L.RawSetInt(statuses, i+1, lua.LString(s))
	}
	L.SetField(t, "statuses", statuses)
	L.Push(t)
	return 1
}
