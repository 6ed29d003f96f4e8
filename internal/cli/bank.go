package cli

import "timed-exam-service/internal/domain"

// defaultBank is served when no Postgres bank store is configured and is what
// `migrate --seed-bank` writes.
func defaultBank(id string) domain.Bank {
	return domain.Bank{
		ID: id,
		Questions: []domain.Question{
			{
				ID:   1,
				Text: "Según el artículo, ¿cuál es el propósito principal de la sección de Introducción en un artículo científico?",
				Options: []domain.Option{
					{ID: "A", Text: "Describir minuciosamente la metodología utilizada para que el estudio sea reproducible"},
					{ID: "B", Text: "Interpretar los hallazgos del estudios y compararlos con la literatura previa"},
					{ID: "C", Text: "Justificar la necesidad del estudio, identificando una brecha en el conocimiento existente y estableciendo objetivos"},
					{ID: "D", Text: "Presentar en detalla los resultados del análisis estadístico"},
				},
				CorrectOptionID: "C",
			},
			{
				ID:   2,
				Text: "¿Qué elemento crucial debe incluirse en la sección de Métodos de un estudio prospectivo que no es un componente de la misma sección en un estudio retrospectivo, según la Tabla 3?",
				Options: []domain.Option{
					{ID: "A", Text: "La descripción del análisis estadístico a realizar"},
					{ID: "B", Text: "Las consideraciones éticas, como la probacion del comité"},
					{ID: "C", Text: "Los criterios de inclusión y no inclusión de los sujetos"},
					{ID: "D", Text: "El calculo del tamaño de la muestra"},
				},
				CorrectOptionID: "D",
			},
			{
				ID:   3,
				Text: "Al redactar la sección de Resultados, ¿qué práctica desaconseja el artículo?",
				Options: []domain.Option{
					{ID: "A", Text: "Incluir comentarios o interpretaciones como “sorprende mente”"},
					{ID: "B", Text: "Presentar los resultados en el mismo orden que los métodos"},
					{ID: "C", Text: "Utilizar el tiempo pasado para describir las observaciones realizadas"},
					{ID: "D", Text: "Hacer referencia a las tablas y figuras que ilustran los datos"},
				},
				CorrectOptionID: "A",
			},
			{
				ID:   4,
				Text: "¿Cuál es la recomendación del artículo para criticar el trabajo de otros autores en la sección de Discusión?",
				Options: []domain.Option{
					{ID: "A", Text: "Criticar explícitamente los trabajos previos para resaltar la superioridad del estudio actual"},
					{ID: "B", Text: "Señalar directamente las debilidades metodológicas, como la falta de poder estadístico"},
					{ID: "C", Text: "Evitar por completo la comparación con otros estudios para no generar controversia"},
					{ID: "D", Text: "Reformular las criticas como fortalezas del propio estudio, implicando las debilidades de otros indirectamente"},
				},
				CorrectOptionID: "D",
			},
			{
				ID:   5,
				Text: "¿Por qué es crucial, según el texto, que el título de un artículo contenga los principales términos y palabras clave?",
				Options: []domain.Option{
					{ID: "A", Text: "Para resumir los hallazgos principales del estudio de la manera más concisa posible"},
					{ID: "B", Text: "Para evitar el uso de subtítulos, que el articulo desaconseja en la mayoria de los casos"},
					{ID: "C", Text: "Para que el trabajo sea fácilmente identificable en búsqueda de bases de datos como PubMed y sea citado por otros"},
					{ID: "D", Text: "Para cumplir con el limite de caracteres impuestos por la mayoria de las revistas científicas"},
				},
				CorrectOptionID: "C",
			},
			{
				ID:   6,
				Text: "¿Qué característica esencial debe tener el Resumen (Abstract) de un artículo científico?",
				Options: []domain.Option{
					{ID: "A", Text: "Debe contener una sección de discusión que interprete los hallazgos"},
					{ID: "B", Text: "Debe incluir referencias a las publicaciones mas importantes citadas en el texto"},
					{ID: "C", Text: "Debe ser comprensible como una unidad independiente, sin necesidad de leer el articulo completo"},
					{ID: "D", Text: "Debe incluir figuras o tablas pequeñas para visualizar los datos mas importantes"},
				},
				CorrectOptionID: "C",
			},
			{
				ID:   7,
				Text: "Al momento de elegir las referencias bibliográficas, ¿qué tipo de fuente sugiere el artículo priorizar?",
				Options: []domain.Option{
					{ID: "A", Text: "Artículos de revisiones porque resumen el conocimiento actual"},
					{ID: "B", Text: "Artículos de investigación originales publicados en revistas por pares y en ingles"},
					{ID: "C", Text: "Comunicaciones personales y datos no publicados para mostrar originalidad"},
					{ID: "D", Text: "Sitios de internet de alta reputación para asegurar la informacion mas reciente"},
				},
				CorrectOptionID: "B",
			},
			{
				ID:   8,
				Text: "¿Cuál es la función de enumerar las limitaciones del estudio en la sección de Discusión?",
				Options: []domain.Option{
					{ID: "A", Text: "Demostrar honestidad y permitir al autor defenderse anticipadamente de posible criticas de los revisores"},
					{ID: "B", Text: "Llenar espacio para cumplir con la longitud mínima de la sección requerida por la revista"},
					{ID: "C", Text: "Indicar que los resultados no son validos y que el estudio debe ser replicado"},
					{ID: "D", Text: "Justificar porque los resultados fueron negativos o no concluyentes"},
				},
				CorrectOptionID: "A",
			},
			{
				ID:   9,
				Text: "De acuerdo con el texto, ¿qué se debe hacer antes de escribir la primera palabra del artículo?",
				Options: []domain.Option{
					{ID: "A", Text: "Identificar la revista de destino para adaptar el estilo y formato del manuscrito"},
					{ID: "B", Text: "Escribir la sección de Discusión para saber que conclusiones se quieren alcanzar"},
					{ID: "C", Text: "Crear todas las tablas y figuras que se incluirán en el manuscrito"},
					{ID: "D", Text: "Redactar el resumen (abstract) para tener una guia clara de todo el contenido"},
				},
				CorrectOptionID: "A",
			},
			{
				ID:   10,
				Text: "En el contexto de la sección de Métodos, ¿qué información es fundamental incluir respecto a la población de estudio si se trata de sujetos humanos?",
				Options: []domain.Option{
					{ID: "A", Text: "Los criterios detallados de inclusión y no inclusión"},
					{ID: "B", Text: "Los resultados del objetivo primario para cada subgrupo de la población"},
					{ID: "C", Text: "Un análisis demográfico completo con medias y desviaciones estándar"},
					{ID: "D", Text: "Únicamente el numero total de pacientes reclutados en el estudio"},
				},
				CorrectOptionID: "A",
			},
		},
	}
}
