package backdrop

import (
	"fmt"
)

// ensureSinglePresenter enforces a single presenter per engine.
// If a different presenter is already installed, it panics with a clear message.
func ensureSinglePresenter(e *Engine, p Presenter) {
	if e == nil {
		panic("ensureSinglePresenter: engine is nil")
	}
	if p == nil {
		panic("ensureSinglePresenter: presenter is nil")
	}
	if e.presenter != nil && e.presenter.Name() != p.Name() {
		e.logger.Errorf("Multiple presenters installed: %s and %s", e.presenter.Name(), p.Name())
		panic(fmt.Sprintf("Multiple presenters installed: %s and %s", e.presenter.Name(), p.Name()))
	}
	e.presenter = p
}
